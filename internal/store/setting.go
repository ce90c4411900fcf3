package store

type Setting struct {
	Name  string `gorm:"primarykey"`
	Value string
}
