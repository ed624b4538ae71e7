package service

import (
	"fmt"
	"strings"
	"testing"

	"scholarly/internal/database"
	"scholarly/internal/domain"
	"scholarly/internal/models"
	"scholarly/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type fixture struct {
	db       *gorm.DB
	svc      *ConcernService
	notifs   *repository.NotificationRepository
	student  domain.Session
	student2 domain.Session
	admin    domain.Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	users := []models.User{
		{FullName: "Alice Johnson", Email: "alice@example.com", Role: domain.RoleStudent},
		{FullName: "Bob Smith", Email: "bob@example.com", Role: domain.RoleStudent},
		{FullName: "Carol Admin", Email: "carol@example.com", Role: domain.RoleAdmin},
	}
	for i := range users {
		if err := db.Create(&users[i]).Error; err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	notifRepo := repository.NewNotificationRepository(db)
	notifSvc := NewNotificationService(notifRepo, zerolog.Nop())
	svc := NewConcernService(repository.NewConcernRepository(db), notifSvc, zerolog.Nop())
	return &fixture{
		db:       db,
		svc:      svc,
		notifs:   notifRepo,
		student:  domain.Session{UserID: users[0].ID, Email: users[0].Email, Role: domain.RoleStudent},
		student2: domain.Session{UserID: users[1].ID, Email: users[1].Email, Role: domain.RoleStudent},
		admin:    domain.Session{UserID: users[2].ID, Email: users[2].Email, Role: domain.RoleAdmin},
	}
}

func (f *fixture) mustCreate(t *testing.T, sess domain.Session, title string) *models.Concern {
	t.Helper()
	c, err := f.svc.Create(sess, title, "something went wrong", domain.CategoryTechnical)
	if err != nil {
		t.Fatalf("create concern: %v", err)
	}
	return c
}

func TestCreateDefaults(t *testing.T) {
	f := newFixture(t)
	c := f.mustCreate(t, f.student, "Can't upload file")
	if c.Status != domain.StatusPending {
		t.Errorf("status = %q, want pending", c.Status)
	}
	if !c.IsRead {
		t.Error("new concern should start read: there is no response yet")
	}
	if c.AdminResponse != "" {
		t.Errorf("admin response = %q, want empty", c.AdminResponse)
	}
	if c.UserID != f.student.UserID {
		t.Errorf("owner = %d, want %d", c.UserID, f.student.UserID)
	}
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		name     string
		title    string
		message  string
		category string
		field    string
	}{
		{"empty title", "", "msg", domain.CategoryOther, "title"},
		{"whitespace title", "   ", "msg", domain.CategoryOther, "title"},
		{"empty message", "title", "", domain.CategoryOther, "message"},
		{"whitespace message", "title", " \t ", domain.CategoryOther, "message"},
		{"unknown category", "title", "msg", "billing", "category"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(f.student, tc.title, tc.message, tc.category)
			if !domain.IsValidation(err) {
				t.Fatalf("err = %v, want validation error", err)
			}
			if !strings.HasPrefix(err.Error(), tc.field+":") {
				t.Errorf("err = %q, want field %q named", err.Error(), tc.field)
			}
		})
	}
}

func TestCreateRequiresSession(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Create(domain.Session{}, "t", "m", domain.CategoryOther); err != domain.ErrUnauthenticated {
		t.Fatalf("err = %v, want ErrUnauthenticated", err)
	}
}

// Every transition among the three states is accepted, including
// reverts out of resolved. The state machine is fully connected.
func TestStatusTransitionsFullyConnected(t *testing.T) {
	f := newFixture(t)
	statuses := []string{domain.StatusPending, domain.StatusInProgress, domain.StatusResolved}
	for _, from := range statuses {
		for _, to := range statuses {
			c := f.mustCreate(t, f.student, fmt.Sprintf("%s to %s", from, to))
			if _, err := f.svc.SetStatus(f.admin, c.ID, from, nil); err != nil {
				t.Fatalf("set %s: %v", from, err)
			}
			updated, err := f.svc.SetStatus(f.admin, c.ID, to, nil)
			if err != nil {
				t.Fatalf("%s -> %s: %v", from, to, err)
			}
			if updated.Status != to {
				t.Errorf("%s -> %s: stored %q", from, to, updated.Status)
			}
		}
	}
}

func TestSetStatusValidation(t *testing.T) {
	f := newFixture(t)
	c := f.mustCreate(t, f.student, "bad status")
	if _, err := f.svc.SetStatus(f.admin, c.ID, "closed", nil); !domain.IsValidation(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestSetStatusAdminOnly(t *testing.T) {
	f := newFixture(t)
	c := f.mustCreate(t, f.student, "role gate")
	if _, err := f.svc.SetStatus(f.student, c.ID, domain.StatusResolved, nil); err != domain.ErrForbidden {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	if _, err := f.svc.Respond(f.student, c.ID, "nope"); err != domain.ErrForbidden {
		t.Fatalf("respond err = %v, want ErrForbidden", err)
	}
}

func TestSetStatusNotFound(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.SetStatus(f.admin, 9999, domain.StatusPending, nil); err != domain.ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRespondResolvesAndNotifiesOnce(t *testing.T) {
	f := newFixture(t)
	c := f.mustCreate(t, f.student, "Can't upload file")

	text := "**We are investigating.**"
	updated, err := f.svc.Respond(f.admin, c.ID, text)
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if updated.Status != domain.StatusResolved {
		t.Errorf("status = %q, want resolved", updated.Status)
	}
	if updated.AdminResponse != text {
		t.Errorf("response = %q, want stored verbatim", updated.AdminResponse)
	}
	if updated.IsRead {
		t.Error("responded concern should be unread for the owner")
	}

	notifs, err := f.notifs.ListByUserID(f.student.UserID)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(notifs) != 1 {
		t.Fatalf("notifications = %d, want exactly 1", len(notifs))
	}
	n := notifs[0]
	if n.Type != domain.NotificationInfo {
		t.Errorf("type = %q, want info", n.Type)
	}
	if n.ReferenceID != c.ID {
		t.Errorf("reference = %d, want %d", n.ReferenceID, c.ID)
	}
	want := fmt.Sprintf("An admin has responded to your concern: \"%s\"", c.Title)
	if n.Message != want {
		t.Errorf("message = %q, want %q", n.Message, want)
	}
}

// Quotes inside the title land in the message as-is, not Go-escaped.
func TestNotificationMessageKeepsQuotesLiteral(t *testing.T) {
	f := newFixture(t)
	c, err := f.svc.Create(f.student, `Form says "try again later"`, "it never works", domain.CategoryTechnical)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.svc.Respond(f.admin, c.ID, "fixed"); err != nil {
		t.Fatalf("respond: %v", err)
	}
	notifs, err := f.notifs.ListByUserID(f.student.UserID)
	if err != nil || len(notifs) != 1 {
		t.Fatalf("notifications = %d (%v), want 1", len(notifs), err)
	}
	want := `An admin has responded to your concern: "Form says "try again later""`
	if notifs[0].Message != want {
		t.Errorf("message = %q, want %q", notifs[0].Message, want)
	}
}

func TestRespondValidation(t *testing.T) {
	f := newFixture(t)
	c := f.mustCreate(t, f.student, "empty response")
	if _, err := f.svc.Respond(f.admin, c.ID, "   "); !domain.IsValidation(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

// A broken notification sink must not fail the response itself.
func TestRespondSurvivesNotificationFailure(t *testing.T) {
	f := newFixture(t)
	c := f.mustCreate(t, f.student, "sink down")
	if err := f.db.Migrator().DropTable(&models.Notification{}); err != nil {
		t.Fatalf("drop table: %v", err)
	}
	updated, err := f.svc.Respond(f.admin, c.ID, "still works")
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if updated.Status != domain.StatusResolved {
		t.Errorf("status = %q, want resolved despite enqueue failure", updated.Status)
	}
}

func TestMarkReadIdempotent(t *testing.T) {
	f := newFixture(t)
	c := f.mustCreate(t, f.student, "read twice")
	if _, err := f.svc.Respond(f.admin, c.ID, "done"); err != nil {
		t.Fatalf("respond: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := f.svc.MarkRead(f.student, c.ID); err != nil {
			t.Fatalf("mark read #%d: %v", i+1, err)
		}
		got, err := f.svc.ListForOwner(f.student, repository.ListOptions{})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(got) != 1 || !got[0].IsRead {
			t.Fatalf("after mark read #%d: is_read = false, want true", i+1)
		}
	}
}

// Without a response there is nothing to acknowledge; the call is a
// silent no-op rather than an error.
func TestMarkReadWithoutResponseNoop(t *testing.T) {
	f := newFixture(t)
	c := f.mustCreate(t, f.student, "no response yet")
	if err := f.svc.MarkRead(f.student, c.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
}

func TestMarkReadOwnerOnly(t *testing.T) {
	f := newFixture(t)
	c := f.mustCreate(t, f.student, "not yours")
	if err := f.svc.MarkRead(f.student2, c.ID); err != domain.ErrForbidden {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestScopedListing(t *testing.T) {
	f := newFixture(t)
	f.mustCreate(t, f.student, "alice one")
	f.mustCreate(t, f.student, "alice two")
	f.mustCreate(t, f.student2, "bob one")

	mine, err := f.svc.ListForOwner(f.student, repository.ListOptions{})
	if err != nil {
		t.Fatalf("list owner: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("owner list = %d, want 2", len(mine))
	}
	for _, c := range mine {
		if c.UserID != f.student.UserID {
			t.Errorf("foreign concern %d leaked into owner listing", c.ID)
		}
	}

	all, err := f.svc.ListAll(f.admin, repository.ListOptions{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("admin list = %d, want 3", len(all))
	}

	if _, err := f.svc.ListAll(f.student, repository.ListOptions{}); err != domain.ErrForbidden {
		t.Fatalf("student list all err = %v, want ErrForbidden", err)
	}
	if _, err := f.svc.ListAll(domain.Session{}, repository.ListOptions{}); err != domain.ErrUnauthenticated {
		t.Fatalf("zero session err = %v, want ErrUnauthenticated", err)
	}
}

// Full user/admin round trip: file, triage, respond, acknowledge.
func TestConcernLifecycle(t *testing.T) {
	f := newFixture(t)
	c, err := f.svc.Create(f.student, "Can't upload file", "Error 500", domain.CategoryTechnical)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	all, err := f.svc.ListAll(f.admin, repository.ListOptions{})
	if err != nil || len(all) != 1 {
		t.Fatalf("admin fetch: %v (%d)", err, len(all))
	}

	if _, err := f.svc.Respond(f.admin, c.ID, "**We are investigating.**"); err != nil {
		t.Fatalf("respond: %v", err)
	}
	if n, err := f.notifs.CountUnread(f.student.UserID); err != nil || n != 1 {
		t.Fatalf("unread count = %d (%v), want 1", n, err)
	}

	if err := f.svc.MarkRead(f.student, c.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	mine, _ := f.svc.ListForOwner(f.student, repository.ListOptions{})
	if len(mine) != 1 || !mine[0].IsRead {
		t.Fatal("owner should see the concern read after opening it")
	}
}

// Status-only updates leave the response untouched; resolved without a
// response and reverting after a response are accepted. The pairing of
// resolved with a non-empty response is a convention, not a rule the
// service enforces.
func TestLooseStatusResponsePairing(t *testing.T) {
	f := newFixture(t)
	c := f.mustCreate(t, f.student, "loose pairing")

	updated, err := f.svc.SetStatus(f.admin, c.ID, domain.StatusInProgress, nil)
	if err != nil {
		t.Fatalf("set in_progress: %v", err)
	}
	if updated.AdminResponse != "" {
		t.Errorf("response = %q, want still empty", updated.AdminResponse)
	}

	updated, err = f.svc.SetStatus(f.admin, c.ID, domain.StatusResolved, nil)
	if err != nil {
		t.Fatalf("resolve without response: %v", err)
	}
	if updated.Status != domain.StatusResolved || updated.AdminResponse != "" {
		t.Error("resolved without a response should be allowed")
	}

	// Revert after a real response: permitted, and no second notice.
	if _, err := f.svc.Respond(f.admin, c.ID, "answer"); err != nil {
		t.Fatalf("respond: %v", err)
	}
	if _, err := f.svc.SetStatus(f.admin, c.ID, domain.StatusPending, nil); err != nil {
		t.Fatalf("revert: %v", err)
	}
	notifs, _ := f.notifs.ListByUserID(f.student.UserID)
	if len(notifs) != 1 {
		t.Errorf("notifications = %d, want 1 (no notice on revert)", len(notifs))
	}
}
