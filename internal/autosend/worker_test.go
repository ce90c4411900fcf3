package autosend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/bornholm/autosend/internal/file"
	"github.com/bornholm/autosend/internal/network"
	"github.com/bornholm/autosend/internal/preference"
	"github.com/bornholm/autosend/internal/report"
	"github.com/bornholm/autosend/internal/slogx"
	"github.com/bornholm/autosend/internal/store"
	"github.com/bornholm/autosend/internal/store/repository/form"
	"github.com/bornholm/autosend/internal/store/repository/instance"
	"github.com/bornholm/autosend/internal/store/repository/setting"
	"github.com/bornholm/autosend/internal/store/storetest"
	"github.com/bornholm/autosend/internal/upload"
	"github.com/bornholm/autosend/internal/upload/server"
	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
)

type notification struct {
	Title      string
	Message    string
	AnyFailure bool
}

type recordingNotifier struct {
	mutex         sync.Mutex
	notifications []notification
}

func (n *recordingNotifier) Show(ctx context.Context, title string, message string, anyFailure bool) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.notifications = append(n.notifications, notification{Title: title, Message: message, AnyFailure: anyFailure})
}

type recordingTelemetry struct {
	mutex  sync.Mutex
	events []string
	runs   []string
}

func (r *recordingTelemetry) Record(ctx context.Context, category string, action string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.events = append(r.events, category+"/"+action)
}

func (r *recordingTelemetry) RecordRun(ctx context.Context, result string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.runs = append(r.runs, result)
}

type fakeStorage struct {
	ready   bool
	deleted []uint
}

func (s *fakeStorage) Ready(ctx context.Context, minFree uint64) (bool, error) {
	return s.ready, nil
}

func (s *fakeStorage) DeleteInstanceArtifacts(instance *store.Instance) error {
	s.deleted = append(s.deleted, instance.ID)
	return nil
}

// fakeUploader returns the outcome registered for each instance display
// name, success by default.
type fakeUploader struct {
	*upload.StatusWriter

	outcomes map[string]upload.Outcome
	attempts     []string
	unusable     bool
	containerErr error
	skips        map[string]string
	onUpload     func(instance *store.Instance)
}

func (u *fakeUploader) Name() string {
	return "fake"
}

func (u *fakeUploader) TargetURL(ctx context.Context, run *upload.Run, instance *store.Instance) (string, error) {
	return "https://example.org/submission", nil
}

func (u *fakeUploader) UploadOne(ctx context.Context, run *upload.Run, instance *store.Instance) upload.Outcome {
	u.attempts = append(u.attempts, instance.DisplayName)

	if u.onUpload != nil {
		u.onUpload(instance)
	}

	if outcome, exists := u.outcomes[instance.DisplayName]; exists {
		return outcome
	}

	return upload.Succeeded("Success")
}

func (u *fakeUploader) SkipReason(ctx context.Context, run *upload.Run, instance *store.Instance) (string, bool) {
	reason, exists := u.skips[instance.DisplayName]
	return reason, exists
}

func (u *fakeUploader) SubmissionsContainerUsable(ctx context.Context) (bool, error) {
	if u.containerErr != nil {
		return false, u.containerErr
	}

	return !u.unusable, nil
}

type testEnv struct {
	t         *testing.T
	instances *instance.Repository
	forms     *form.Repository
	settings  *setting.Repository
	storage   *fakeStorage
	notifier  *recordingNotifier
	telemetry *recordingTelemetry
	link      network.Link
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	s := storetest.New(t)

	return &testEnv{
		t:         t,
		instances: instance.NewRepository(s),
		forms:     form.NewRepository(s),
		settings:  setting.NewRepository(s),
		storage:   &fakeStorage{ready: true},
		notifier:  &recordingNotifier{},
		telemetry: &recordingTelemetry{},
		link:      network.LinkWifi,
	}
}

func (e *testEnv) setPreferences(mode preference.AutoSendMode, deleteAfterSend bool, protocol preference.Protocol) {
	e.t.Helper()

	ctx := context.Background()

	values := map[string]string{
		preference.KeyAutoSend:        mode.String(),
		preference.KeyDeleteAfterSend: "false",
		preference.KeyProtocol:        string(protocol),
	}

	if deleteAfterSend {
		values[preference.KeyDeleteAfterSend] = "true"
	}

	for key, value := range values {
		if err := e.settings.Set(ctx, key, value); err != nil {
			e.t.Fatalf("%+v", err)
		}
	}
}

func (e *testEnv) createForm(formID string, autoSend *bool, autoDelete *bool) {
	e.t.Helper()

	f := &store.Form{FormID: formID, Version: "1", DisplayName: formID, AutoSend: autoSend, AutoDelete: autoDelete}
	if err := e.forms.Create(context.Background(), f); err != nil {
		e.t.Fatalf("%+v", err)
	}
}

func (e *testEnv) createInstances(formID string, names ...string) []*store.Instance {
	e.t.Helper()

	instances := make([]*store.Instance, 0, len(names))
	for _, name := range names {
		i := store.NewInstance(formID, "1", name, name+"/submission.xml")
		if err := e.instances.Create(context.Background(), i); err != nil {
			e.t.Fatalf("%+v", err)
		}
		instances = append(instances, i)
	}

	return instances
}

func (e *testEnv) worker(factory upload.Factory, protocol preference.Protocol) *Worker {
	return NewWorker(e.settings, e.instances, e.forms, e.storage, report.NewReporter(e.instances, e.forms),
		WithLogger(slogx.NewTestLogger(e.t)),
		WithDetector(network.StaticDetector(e.link)),
		WithNotifier(e.notifier),
		WithTelemetry(e.telemetry),
		WithDeviceID("autosend:test"),
		WithUploader(protocol, factory),
	)
}

func (e *testEnv) fakeFactory(uploader *fakeUploader) upload.Factory {
	uploader.StatusWriter = upload.NewStatusWriter(e.instances)
	return func(ctx context.Context) (upload.Uploader, error) {
		return uploader, nil
	}
}

func (e *testEnv) assertStatuses(instances []*store.Instance, expected ...store.InstanceStatus) {
	e.t.Helper()

	for idx, i := range instances {
		current, err := e.instances.GetByID(context.Background(), i.ID)
		if err != nil {
			e.t.Fatalf("%+v", err)
		}

		if expected[idx] != current.Status {
			e.t.Errorf("instance %s: expected status '%s', got '%s'", i.DisplayName, expected[idx], current.Status)
		}
	}
}

func (e *testEnv) assertUntouched(instances []*store.Instance) {
	e.t.Helper()

	for _, i := range instances {
		current, err := e.instances.GetByID(context.Background(), i.ID)
		if err != nil {
			e.t.Fatalf("%+v", err)
		}

		if current.Status != store.StatusFinalized || current.LastStatusChangeAt != nil {
			e.t.Errorf("instance %s: expected no status write, got %s", i.DisplayName, spew.Sdump(current.Status, current.LastStatusChangeAt))
		}
	}
}

func TestRunGateRetry(t *testing.T) {
	env := newTestEnv(t)
	env.link = network.LinkCellular
	env.setPreferences(preference.AutoSendWifi, false, preference.ProtocolServer)
	env.createForm("survey", nil, nil)
	instances := env.createInstances("survey", "A", "B", "C")

	uploader := &fakeUploader{}
	factoryCalls := 0
	factory := func(ctx context.Context) (upload.Uploader, error) {
		factoryCalls++
		return uploader, nil
	}

	result := env.worker(factory, preference.ProtocolServer).Run(context.Background())

	if e, g := ResultRetry, result; e != g {
		t.Fatalf("expected result %s, got %s", e, g)
	}

	env.assertUntouched(instances)

	if factoryCalls != 0 || len(uploader.attempts) != 0 {
		t.Errorf("expected no network activity, got %d factory calls and %d attempts", factoryCalls, len(uploader.attempts))
	}

	if e, g := 0, len(env.notifier.notifications); e != g {
		t.Errorf("expected %d notification, got %d", e, g)
	}
}

func TestRunGateFail(t *testing.T) {
	env := newTestEnv(t)
	env.storage.ready = false
	env.setPreferences(preference.AutoSendWifiAndCellular, false, preference.ProtocolServer)
	env.createForm("survey", nil, nil)
	instances := env.createInstances("survey", "A", "B")

	uploader := &fakeUploader{}

	result := env.worker(env.fakeFactory(uploader), preference.ProtocolServer).Run(context.Background())

	if e, g := ResultFailure, result; e != g {
		t.Fatalf("expected result %s, got %s", e, g)
	}

	env.assertUntouched(instances)

	if e, g := 0, len(uploader.attempts); e != g {
		t.Errorf("expected %d attempts, got %d", e, g)
	}
}

func newTestServerFactory(t *testing.T, env *testEnv, handler http.Handler, names ...string) upload.Factory {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	for _, name := range names {
		path := filepath.Join(dir, name, "submission.xml")
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			t.Fatalf("%+v", err)
		}
		if err := os.WriteFile(path, []byte("<data><name>"+name+"</name></data>"), 0640); err != nil {
			t.Fatalf("%+v", err)
		}
	}

	files := file.NewStorage(dir, slogx.NewTestLogger(t))

	uploader := server.New(upload.NewStatusWriter(env.instances), env.forms, files,
		server.WithLogger(slogx.NewTestLogger(t)),
		server.WithServerURL(srv.URL, "/submission"),
	)

	return func(ctx context.Context) (upload.Uploader, error) {
		return uploader, nil
	}
}

func TestRunHappyPathServer(t *testing.T) {
	env := newTestEnv(t)
	env.setPreferences(preference.AutoSendWifiAndCellular, false, preference.ProtocolServer)
	env.createForm("survey", nil, nil)
	instances := env.createInstances("survey", "A", "B")

	factory := newTestServerFactory(t, env, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}), "A", "B")

	result := env.worker(factory, preference.ProtocolServer).Run(context.Background())

	if e, g := ResultSuccess, result; e != g {
		t.Fatalf("expected result %s, got %s", e, g)
	}

	env.assertStatuses(instances, store.StatusSubmitted, store.StatusSubmitted)

	if e, g := 1, len(env.notifier.notifications); e != g {
		t.Fatalf("expected %d notification, got %d", e, g)
	}

	n := env.notifier.notifications[0]

	if e, g := "A - Success\n\nB - Success", n.Message; e != g {
		t.Errorf("expected message '%s', got '%s'", e, g)
	}

	if e, g := "Success", n.Title; e != g {
		t.Errorf("expected title '%s', got '%s'", e, g)
	}

	if n.AnyFailure {
		t.Error("expected no failure")
	}

	if e, g := "Submission/HTTP auto,Submission/HTTP auto", strings.Join(env.telemetry.events, ","); e != g {
		t.Errorf("expected telemetry events '%s', got '%s'", e, g)
	}

	if e, g := "success", strings.Join(env.telemetry.runs, ","); e != g {
		t.Errorf("expected runs '%s', got '%s'", e, g)
	}
}

func TestRunAuthFatalMidRun(t *testing.T) {
	env := newTestEnv(t)
	env.setPreferences(preference.AutoSendWifiAndCellular, false, preference.ProtocolServer)
	env.createForm("survey", nil, nil)
	instances := env.createInstances("survey", "A", "B", "C")

	var posts atomic.Int32

	factory := newTestServerFactory(t, env, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if posts.Add(1) == 1 {
			w.WriteHeader(http.StatusCreated)
			return
		}

		w.Header().Set("WWW-Authenticate", `Basic realm="collect"`)
		w.WriteHeader(http.StatusUnauthorized)
	}), "A", "B", "C")

	result := env.worker(factory, preference.ProtocolServer).Run(context.Background())

	if e, g := ResultFailure, result; e != g {
		t.Fatalf("expected result %s, got %s", e, g)
	}

	env.assertStatuses(instances, store.StatusSubmitted, store.StatusSubmissionFailed, store.StatusFinalized)

	if e, g := int32(2), posts.Load(); e != g {
		t.Errorf("expected %d POST requests, got %d", e, g)
	}

	if e, g := 1, len(env.notifier.notifications); e != g {
		t.Fatalf("expected %d notification, got %d", e, g)
	}

	message := env.notifier.notifications[0].Message

	if !strings.Contains(message, "A - Success") || !strings.Contains(message, "B - Authentication required") {
		t.Errorf("expected report of A and B, got '%s'", message)
	}

	if strings.Contains(message, "C - ") {
		t.Errorf("expected C to be absent from report, got '%s'", message)
	}

	if !env.notifier.notifications[0].AnyFailure {
		t.Error("expected failure flag")
	}
}

func TestRunMixedTransient(t *testing.T) {
	env := newTestEnv(t)
	env.setPreferences(preference.AutoSendWifiAndCellular, false, preference.ProtocolServer)
	env.createForm("survey", nil, nil)
	instances := env.createInstances("survey", "A", "B")

	uploader := &fakeUploader{
		outcomes: map[string]upload.Outcome{
			"B": upload.Failed("Server error 503, the submission will be retried"),
		},
	}

	result := env.worker(env.fakeFactory(uploader), preference.ProtocolServer).Run(context.Background())

	if e, g := ResultSuccess, result; e != g {
		t.Fatalf("expected result %s, got %s", e, g)
	}

	env.assertStatuses(instances, store.StatusSubmitted, store.StatusSubmissionFailed)

	if e, g := 1, len(env.notifier.notifications); e != g {
		t.Fatalf("expected %d notification, got %d", e, g)
	}

	n := env.notifier.notifications[0]

	if !n.AnyFailure {
		t.Error("expected failure flag")
	}

	if e, g := "Failures", n.Title; e != g {
		t.Errorf("expected title '%s', got '%s'", e, g)
	}
}

func TestRunBlankFormMismatch(t *testing.T) {
	env := newTestEnv(t)
	env.setPreferences(preference.AutoSendWifiAndCellular, false, preference.ProtocolSheets)
	env.createForm("f1", nil, nil)
	env.createForm("f1", nil, nil)
	instances := env.createInstances("f1", "A")

	const mismatch = "not exactly one blank form for this form id"

	uploader := &fakeUploader{
		skips: map[string]string{
			"A": mismatch,
		},
	}

	result := env.worker(env.fakeFactory(uploader), preference.ProtocolSheets).Run(context.Background())

	if e, g := ResultSuccess, result; e != g {
		t.Fatalf("expected result %s, got %s", e, g)
	}

	env.assertUntouched(instances)

	if e, g := 0, len(uploader.attempts); e != g {
		t.Errorf("expected %d attempts, got %d", e, g)
	}

	if e, g := 1, len(env.notifier.notifications); e != g {
		t.Fatalf("expected %d notification, got %d", e, g)
	}

	if e, g := "A - "+mismatch, env.notifier.notifications[0].Message; e != g {
		t.Errorf("expected message '%s', got '%s'", e, g)
	}
}

func TestRunSkippedDuringUpload(t *testing.T) {
	env := newTestEnv(t)
	env.setPreferences(preference.AutoSendWifiAndCellular, false, preference.ProtocolServer)
	env.createForm("survey", nil, nil)
	instances := env.createInstances("survey", "A")

	uploader := &fakeUploader{
		outcomes: map[string]upload.Outcome{
			"A": upload.Skipped("skipped"),
		},
	}

	result := env.worker(env.fakeFactory(uploader), preference.ProtocolServer).Run(context.Background())

	if e, g := ResultSuccess, result; e != g {
		t.Fatalf("expected result %s, got %s", e, g)
	}

	env.assertStatuses(instances, store.StatusFinalized)

	if e, g := 1, len(uploader.attempts); e != g {
		t.Errorf("expected %d attempt, got %d", e, g)
	}
}

func TestRunDeletion(t *testing.T) {
	type testCase struct {
		Name            string
		DeleteAfterSend bool
		FormAutoDelete  *bool
		Outcome         *upload.Outcome
		Deleted         bool
	}

	failed := upload.Failed("rejected")

	testCases := []testCase{
		{Name: "kept", Deleted: false},
		{Name: "device setting", DeleteAfterSend: true, Deleted: true},
		{Name: "form setting", FormAutoDelete: storetest.Bool(true), Deleted: true},
		{Name: "form keeps but device deletes", DeleteAfterSend: true, FormAutoDelete: storetest.Bool(false), Deleted: true},
		{Name: "failed submission", DeleteAfterSend: true, Outcome: &failed, Deleted: false},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			env := newTestEnv(t)
			env.setPreferences(preference.AutoSendWifiAndCellular, tc.DeleteAfterSend, preference.ProtocolServer)
			env.createForm("survey", nil, tc.FormAutoDelete)
			instances := env.createInstances("survey", "A")

			uploader := &fakeUploader{outcomes: map[string]upload.Outcome{}}
			if tc.Outcome != nil {
				uploader.outcomes["A"] = *tc.Outcome
			}

			if e, g := ResultSuccess, env.worker(env.fakeFactory(uploader), preference.ProtocolServer).Run(context.Background()); e != g {
				t.Fatalf("expected result %s, got %s", e, g)
			}

			_, err := env.instances.GetByID(context.Background(), instances[0].ID)
			deleted := err != nil

			if e, g := tc.Deleted, deleted; e != g {
				t.Errorf("expected deleted %v, got %v", e, g)
			}

			if e, g := tc.Deleted, len(env.storage.deleted) == 1; e != g {
				t.Errorf("expected files deleted %v, got %v", e, g)
			}

			if e, g := 1, len(env.notifier.notifications); e != g {
				t.Fatalf("expected %d notification, got %d", e, g)
			}

			// The report keeps the name of deleted instances
			if !strings.HasPrefix(env.notifier.notifications[0].Message, "A - ") {
				t.Errorf("unexpected report '%s'", env.notifier.notifications[0].Message)
			}
		})
	}
}

func TestRunForcedFormOnDisallowedMedium(t *testing.T) {
	env := newTestEnv(t)
	env.link = network.LinkNone
	env.setPreferences(preference.AutoSendOff, false, preference.ProtocolServer)
	env.createForm("forced", storetest.Bool(true), nil)
	env.createForm("regular", nil, nil)
	forced := env.createInstances("forced", "F")
	regular := env.createInstances("regular", "R")

	uploader := &fakeUploader{}

	result := env.worker(env.fakeFactory(uploader), preference.ProtocolServer).Run(context.Background())

	if e, g := ResultSuccess, result; e != g {
		t.Fatalf("expected result %s, got %s", e, g)
	}

	env.assertStatuses(forced, store.StatusSubmitted)
	env.assertUntouched(regular)

	if e, g := "F", strings.Join(uploader.attempts, ","); e != g {
		t.Errorf("expected attempts '%s', got '%s'", e, g)
	}
}

func TestRunNoCandidate(t *testing.T) {
	env := newTestEnv(t)
	env.setPreferences(preference.AutoSendWifiAndCellular, false, preference.ProtocolServer)
	env.createForm("survey", storetest.Bool(false), nil)
	instances := env.createInstances("survey", "A")

	uploader := &fakeUploader{}

	result := env.worker(env.fakeFactory(uploader), preference.ProtocolServer).Run(context.Background())

	if e, g := ResultSuccess, result; e != g {
		t.Fatalf("expected result %s, got %s", e, g)
	}

	env.assertUntouched(instances)

	if e, g := 0, len(env.notifier.notifications); e != g {
		t.Errorf("expected %d notification, got %d", e, g)
	}
}

func TestRunPreconditionFailure(t *testing.T) {
	env := newTestEnv(t)
	env.setPreferences(preference.AutoSendWifiAndCellular, false, preference.ProtocolSheets)
	env.createForm("survey", nil, nil)
	instances := env.createInstances("survey", "A")

	factory := func(ctx context.Context) (upload.Uploader, error) {
		return nil, upload.NewPreconditionError("No Google account selected")
	}

	result := env.worker(factory, preference.ProtocolSheets).Run(context.Background())

	if e, g := ResultFailure, result; e != g {
		t.Fatalf("expected result %s, got %s", e, g)
	}

	env.assertUntouched(instances)

	if e, g := 1, len(env.notifier.notifications); e != g {
		t.Fatalf("expected %d notification, got %d", e, g)
	}

	if e, g := "No Google account selected", env.notifier.notifications[0].Message; e != g {
		t.Errorf("expected message '%s', got '%s'", e, g)
	}
}

func TestRunContainerUnusable(t *testing.T) {
	env := newTestEnv(t)
	env.setPreferences(preference.AutoSendWifiAndCellular, false, preference.ProtocolSheets)
	env.createForm("survey", nil, nil)
	instances := env.createInstances("survey", "A")

	uploader := &fakeUploader{unusable: true}

	result := env.worker(env.fakeFactory(uploader), preference.ProtocolSheets).Run(context.Background())

	if e, g := ResultFailure, result; e != g {
		t.Fatalf("expected result %s, got %s", e, g)
	}

	env.assertUntouched(instances)

	if e, g := 0, len(uploader.attempts); e != g {
		t.Errorf("expected %d attempts, got %d", e, g)
	}

	if e, g := 1, len(env.notifier.notifications); e != g {
		t.Errorf("expected %d notification, got %d", e, g)
	}
}

func TestRunContainerCheckFailure(t *testing.T) {
	type testCase struct {
		Name            string
		Err             error
		ExpectedMessage string
	}

	testCases := []testCase{
		{
			Name:            "precondition",
			Err:             errors.WithStack(upload.NewPreconditionError("Google authorization failed, select your account again")),
			ExpectedMessage: "Google authorization failed, select your account again",
		},
		{
			Name:            "unclassified",
			Err:             errors.Wrap(errors.New("connection refused"), "could not search for folder"),
			ExpectedMessage: "Could not check the submissions destination of fake: connection refused",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			env := newTestEnv(t)
			env.setPreferences(preference.AutoSendWifiAndCellular, false, preference.ProtocolSheets)
			env.createForm("survey", nil, nil)
			instances := env.createInstances("survey", "A")

			uploader := &fakeUploader{containerErr: tc.Err}

			result := env.worker(env.fakeFactory(uploader), preference.ProtocolSheets).Run(context.Background())

			if e, g := ResultFailure, result; e != g {
				t.Fatalf("expected result %s, got %s", e, g)
			}

			env.assertUntouched(instances)

			if e, g := 0, len(uploader.attempts); e != g {
				t.Errorf("expected %d attempts, got %d", e, g)
			}

			if e, g := 1, len(env.notifier.notifications); e != g {
				t.Fatalf("expected %d notification, got %d", e, g)
			}

			if e, g := tc.ExpectedMessage, env.notifier.notifications[0].Message; e != g {
				t.Errorf("expected message '%s', got '%s'", e, g)
			}
		})
	}
}

func TestRunCancelled(t *testing.T) {
	env := newTestEnv(t)
	env.setPreferences(preference.AutoSendWifiAndCellular, false, preference.ProtocolServer)
	env.createForm("survey", nil, nil)
	instances := env.createInstances("survey", "A", "B")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	uploader := &fakeUploader{
		outcomes: map[string]upload.Outcome{
			"A": upload.Failed("context canceled"),
		},
		onUpload: func(instance *store.Instance) {
			cancel()
		},
	}

	result := env.worker(env.fakeFactory(uploader), preference.ProtocolServer).Run(ctx)

	if e, g := ResultFailure, result; e != g {
		t.Fatalf("expected result %s, got %s", e, g)
	}

	env.assertStatuses(instances, store.StatusFinalized, store.StatusFinalized)

	if e, g := "A", strings.Join(uploader.attempts, ","); e != g {
		t.Errorf("expected attempts '%s', got '%s'", e, g)
	}
}

func TestRunRecoversInterruptedSubmission(t *testing.T) {
	env := newTestEnv(t)
	env.setPreferences(preference.AutoSendWifiAndCellular, false, preference.ProtocolServer)
	env.createForm("survey", nil, nil)
	instances := env.createInstances("survey", "A")

	if err := env.instances.UpdateStatus(context.Background(), instances[0].ID, store.StatusSubmitting); err != nil {
		t.Fatalf("%+v", err)
	}

	uploader := &fakeUploader{}

	result := env.worker(env.fakeFactory(uploader), preference.ProtocolServer).Run(context.Background())

	if e, g := ResultSuccess, result; e != g {
		t.Fatalf("expected result %s, got %s", e, g)
	}

	env.assertStatuses(instances, store.StatusSubmitted)
}
