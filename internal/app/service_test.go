package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"dyreklinik/api/internal/store"
)

func TestBootstrapSeedsEditorAndContent(t *testing.T) {
	env := newTestEnv()

	if err := env.service.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	if len(env.store.users) != 1 {
		t.Fatalf("users = %d, want 1", len(env.store.users))
	}
	user, err := env.store.GetUserByEmail(context.Background(), "admin@klinik.dk")
	if err != nil {
		t.Fatalf("seeded editor missing: %v", err)
	}
	if user.PasswordHash == "klinik-dev-password" {
		t.Fatal("password was stored in plaintext")
	}

	if len(env.store.categories) != 3 {
		t.Fatalf("categories = %d, want 3", len(env.store.categories))
	}
	for _, category := range env.store.categories {
		if category.Slug == "" {
			t.Fatalf("category %q has no slug", category.Name)
		}
	}
	if len(env.store.services) != 4 {
		t.Fatalf("services = %d, want 4", len(env.store.services))
	}
	if len(env.store.faqs) != 2 {
		t.Fatalf("faqs = %d, want 2", len(env.store.faqs))
	}
}

func TestBootstrapIsIdempotent(t *testing.T) {
	env := newTestEnv()

	if err := env.service.Bootstrap(context.Background()); err != nil {
		t.Fatalf("first bootstrap: %v", err)
	}
	if err := env.service.Bootstrap(context.Background()); err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}
	if len(env.store.users) != 1 || len(env.store.categories) != 3 {
		t.Fatal("second bootstrap duplicated seed data")
	}
}

func TestSeededEditorCanLogIn(t *testing.T) {
	env := newTestEnv()
	if err := env.service.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	session, err := env.service.Login(context.Background(), "admin@klinik.dk", "klinik-dev-password")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.UserName != "Dyreklinikken" {
		t.Fatalf("userName = %q", session.UserName)
	}
}

func TestPasswordResetFlowWithMailer(t *testing.T) {
	env := newTestEnv()
	env.addEditor("usr_1", "Mette", "mette@klinik.dk", "gammelt-kodeord")

	devToken, err := env.service.RequestPasswordReset(context.Background(), "mette@klinik.dk")
	if err != nil {
		t.Fatalf("request reset: %v", err)
	}
	if devToken != "" {
		t.Fatal("token must not be returned when a mailer is configured")
	}
	if len(env.mail.resets) != 1 {
		t.Fatalf("reset emails = %d, want 1", len(env.mail.resets))
	}
	resetURL := env.mail.resets[0]
	if !strings.HasPrefix(resetURL, "https://klinik.example.dk/admin/nulstil?token=") {
		t.Fatalf("reset url = %q", resetURL)
	}

	token := strings.TrimPrefix(resetURL, "https://klinik.example.dk/admin/nulstil?token=")
	if err := env.service.ResetPassword(context.Background(), token, "nyt-kodeord-123"); err != nil {
		t.Fatalf("reset password: %v", err)
	}

	if _, err := env.service.Login(context.Background(), "mette@klinik.dk", "gammelt-kodeord"); err == nil {
		t.Fatal("old password still works")
	}
	if _, err := env.service.Login(context.Background(), "mette@klinik.dk", "nyt-kodeord-123"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}

	// Tokens are single use.
	if err := env.service.ResetPassword(context.Background(), token, "endnu-et-kodeord"); err == nil {
		t.Fatal("used token was accepted")
	}
}

func TestPasswordResetWithoutMailerReturnsDevToken(t *testing.T) {
	env := newTestEnv()
	env.mail.configured = false
	env.addEditor("usr_1", "Mette", "mette@klinik.dk", "gammelt-kodeord")

	devToken, err := env.service.RequestPasswordReset(context.Background(), "mette@klinik.dk")
	if err != nil {
		t.Fatalf("request reset: %v", err)
	}
	if devToken == "" {
		t.Fatal("expected a dev token when no mailer is configured")
	}
}

func TestPasswordResetUnknownEmailIsSilent(t *testing.T) {
	env := newTestEnv()

	devToken, err := env.service.RequestPasswordReset(context.Background(), "ukendt@klinik.dk")
	if err != nil {
		t.Fatalf("request reset: %v", err)
	}
	if devToken != "" {
		t.Fatal("unknown email must not yield a token")
	}
	if len(env.mail.resets) != 0 {
		t.Fatal("unknown email must not trigger an email")
	}
}

func TestResetPasswordTooShort(t *testing.T) {
	env := newTestEnv()

	err := env.service.ResetPassword(context.Background(), "some-token", "kort")
	if err == nil {
		t.Fatal("expected error")
	}
	var domainErr *DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "RESET_FAILED" {
		t.Fatalf("err = %v", err)
	}
}

func seedTeamMember(id, name, imagePath string) store.TeamMember {
	return store.TeamMember{ID: id, Name: name, Title: "Dyrlæge", ImagePath: imagePath, SortOrder: 1, IsActive: true}
}

func TestUpdateTeamMemberCleansReplacedImage(t *testing.T) {
	env := newTestEnv()
	env.store.team = append(env.store.team, seedTeamMember("tm_1", "Mette Holm", "team/old.jpg"))

	_, err := env.service.UpdateTeamMember(context.Background(), "tm_1", TeamMemberInput{
		Name:      "Mette Holm",
		ImagePath: "team/new.jpg",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(env.media.deleted) != 1 || env.media.deleted[0] != "team/old.jpg" {
		t.Fatalf("deleted = %v, want the replaced image", env.media.deleted)
	}
}

func TestDeleteTeamMemberCleansImage(t *testing.T) {
	env := newTestEnv()
	env.store.team = append(env.store.team, seedTeamMember("tm_1", "Mette Holm", "team/mette.jpg"))

	if err := env.service.DeleteTeamMember(context.Background(), "tm_1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(env.media.deleted) != 1 || env.media.deleted[0] != "team/mette.jpg" {
		t.Fatalf("deleted = %v", env.media.deleted)
	}
}

func TestUpdateTeamMemberSamePathKeepsImage(t *testing.T) {
	env := newTestEnv()
	env.store.team = append(env.store.team, seedTeamMember("tm_1", "Mette Holm", "team/mette.jpg"))

	_, err := env.service.UpdateTeamMember(context.Background(), "tm_1", TeamMemberInput{
		Name:      "Mette Holm-Jensen",
		ImagePath: "team/mette.jpg",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(env.media.deleted) != 0 {
		t.Fatalf("deleted = %v, want none", env.media.deleted)
	}
}

func TestDeleteMediaRejectsTraversal(t *testing.T) {
	env := newTestEnv()

	if err := env.service.DeleteMedia(context.Background(), "../secrets"); err == nil {
		t.Fatal("expected error for path traversal")
	}
	if err := env.service.DeleteMedia(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
