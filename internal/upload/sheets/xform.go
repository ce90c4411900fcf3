package sheets

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/pkg/errors"
)

const columnSeparator = "-"

type node struct {
	name     string
	text     strings.Builder
	children []*node
}

type field struct {
	Column string
	Value  string
}

// Columns returns the leaf paths of the primary instance of an XForm
// definition, in document order.
func Columns(r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)

	root, err := primaryInstanceRoot(decoder)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	seen := map[string]struct{}{}
	columns := make([]string, 0)

	for _, f := range flatten(root, "") {
		if _, exists := seen[f.Column]; exists {
			continue
		}
		seen[f.Column] = struct{}{}
		columns = append(columns, f.Column)
	}

	return columns, nil
}

// Values returns the leaf values of a submission keyed by column. Values
// of repeated elements are joined with a space.
func Values(r io.Reader) (map[string]string, error) {
	decoder := xml.NewDecoder(r)

	for {
		token, err := decoder.Token()
		if err != nil {
			return nil, errors.Wrap(err, "could not find submission root element")
		}

		start, ok := token.(xml.StartElement)
		if !ok {
			continue
		}

		root, err := parseNode(decoder, start)
		if err != nil {
			return nil, errors.WithStack(err)
		}

		values := map[string]string{}
		for _, f := range flatten(root, "") {
			if existing, exists := values[f.Column]; exists {
				values[f.Column] = existing + " " + f.Value
				continue
			}
			values[f.Column] = f.Value
		}

		return values, nil
	}
}

func primaryInstanceRoot(decoder *xml.Decoder) (*node, error) {
	inModel := false
	inInstance := false

	for {
		token, err := decoder.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, errors.New("no primary instance in form definition")
			}
			return nil, errors.Wrap(err, "could not parse form definition")
		}

		start, ok := token.(xml.StartElement)
		if !ok {
			continue
		}

		switch {
		case !inModel && start.Name.Local == "model":
			inModel = true
		case inModel && !inInstance && start.Name.Local == "instance":
			inInstance = true
		case inInstance:
			return parseNode(decoder, start)
		}
	}
}

func parseNode(decoder *xml.Decoder, start xml.StartElement) (*node, error) {
	n := &node{name: start.Name.Local}

	for {
		token, err := decoder.Token()
		if err != nil {
			return nil, errors.Wrapf(err, "could not parse element '%s'", n.name)
		}

		switch t := token.(type) {
		case xml.StartElement:
			child, err := parseNode(decoder, t)
			if err != nil {
				return nil, errors.WithStack(err)
			}
			n.children = append(n.children, child)
		case xml.CharData:
			n.text.Write(t)
		case xml.EndElement:
			return n, nil
		}
	}
}

// flatten returns the leaves below n, the root element name excluded
func flatten(n *node, prefix string) []field {
	fields := make([]field, 0)

	for _, child := range n.children {
		column := child.name
		if prefix != "" {
			column = prefix + columnSeparator + child.name
		}

		if len(child.children) == 0 {
			fields = append(fields, field{Column: column, Value: strings.TrimSpace(child.text.String())})
			continue
		}

		fields = append(fields, flatten(child, column)...)
	}

	return fields
}
