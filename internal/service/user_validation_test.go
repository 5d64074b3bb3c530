package service

import (
	"testing"

	"snaketests_backend/internal/util"
)

func str(s string) *string { return &s }

func TestCreateFromREST(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "taken")

	tests := []struct {
		name   string
		fields UserFields
		kind   util.ErrorKind
	}{
		{"missing password", UserFields{Username: str("newbie"), Email: str("newbie@example.com")}, util.KindBadRequest},
		{"short username", UserFields{Username: str("n"), Email: str("n@example.com"), Password: str("password123")}, util.KindFieldLengthViolation},
		{"punctuation", UserFields{Username: str("new.bie"), Email: str("newbie@example.com"), Password: str("password123")}, util.KindFieldValueRejected},
		{"reserved name", UserFields{Username: str("Admin"), Email: str("admin@example.com"), Password: str("password123")}, util.KindFieldValueRejected},
		{"taken username", UserFields{Username: str("taken"), Email: str("x@example.com"), Password: str("password123")}, util.KindFieldValueRejected},
		{"short domain", UserFields{Username: str("newbie"), Email: str("n@b.c"), Password: str("password123")}, util.KindFieldValueRejected},
		{"taken email", UserFields{Username: str("newbie"), Email: str("taken@example.com"), Password: str("password123")}, util.KindFieldValueRejected},
		{"short password", UserFields{Username: str("newbie"), Email: str("newbie@example.com"), Password: str("pass")}, util.KindFieldLengthViolation},
		{"short first name", UserFields{Username: str("newbie"), Email: str("newbie@example.com"), Password: str("password123"), FirstName: str("N")}, util.KindFieldLengthViolation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.profile.CreateFromREST(tt.fields)
			if got := util.KindOf(err); got != tt.kind {
				t.Errorf("kind = %v, want %v (%v)", got, tt.kind, err)
			}
		})
	}

	user, err := env.profile.CreateFromREST(UserFields{Username: str("newbie"), Email: str("NewBie@example.com"), Password: str("password123")})
	if err != nil {
		t.Fatalf("valid create: %v", err)
	}
	if user.Email != "newbie@example.com" || user.IsSuperuser {
		t.Errorf("created user = %+v", user)
	}
	if _, err := env.auth.Login(LoginRequest{Login: "newbie", Password: "password123"}); err != nil {
		t.Errorf("created user cannot log in: %v", err)
	}
}

func TestReplaceAndPatchFromREST(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "owner")
	env.register(t, "other")

	full := func() UserFields {
		return UserFields{FirstName: str("Jo"), LastName: str("Doe"), Username: str("owner"), Email: str("owner@example.com")}
	}

	t.Run("put missing fields", func(t *testing.T) {
		err := env.profile.ReplaceFromREST(user, UserFields{Username: str("owner")})
		if util.KindOf(err) != util.KindBadRequest {
			t.Errorf("err = %v", err)
		}
	})
	t.Run("put password", func(t *testing.T) {
		f := full()
		f.Password = str("password123")
		if err := env.profile.ReplaceFromREST(user, f); util.KindOf(err) != util.KindFieldValueRejected {
			t.Errorf("err = %v", err)
		}
	})
	t.Run("put empty values", func(t *testing.T) {
		tests := []struct {
			name   string
			fields UserFields
		}{
			{"all", UserFields{FirstName: str(""), LastName: str(""), Username: str(""), Email: str("")}},
			{"username", UserFields{FirstName: str("Jo"), LastName: str("Doe"), Username: str(""), Email: str("owner@example.com")}},
			{"email", UserFields{FirstName: str("Jo"), LastName: str("Doe"), Username: str("owner"), Email: str("")}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if err := env.profile.ReplaceFromREST(user, tt.fields); util.KindOf(err) != util.KindFieldLengthViolation {
					t.Errorf("err = %v, want length violation", err)
				}
			})
		}
		stored, _ := env.users.FindByID(user.ID)
		if stored.Username != "owner" || stored.Email != "owner@example.com" {
			t.Errorf("stored = %+v", stored)
		}
	})
	t.Run("put blank names", func(t *testing.T) {
		f := full()
		f.FirstName, f.LastName = str(""), str("")
		if err := env.profile.ReplaceFromREST(user, f); err != nil {
			t.Fatalf("err = %v", err)
		}
	})
	t.Run("put keeps own username", func(t *testing.T) {
		if err := env.profile.ReplaceFromREST(user, full()); err != nil {
			t.Fatalf("err = %v", err)
		}
		if user.FirstName != "Jo" || user.LastName != "Doe" {
			t.Errorf("user = %+v", user)
		}
	})
	t.Run("patch empty", func(t *testing.T) {
		if err := env.profile.PatchFromREST(user, UserFields{}); util.KindOf(err) != util.KindFieldValueRejected {
			t.Errorf("err = %v", err)
		}
	})
	t.Run("patch other username", func(t *testing.T) {
		if err := env.profile.PatchFromREST(user, UserFields{Username: str("other")}); util.KindOf(err) != util.KindFieldValueRejected {
			t.Errorf("err = %v", err)
		}
	})
	t.Run("patch one field", func(t *testing.T) {
		if err := env.profile.PatchFromREST(user, UserFields{LastName: str("Smith")}); err != nil {
			t.Fatalf("err = %v", err)
		}
		stored, _ := env.users.FindByID(user.ID)
		if stored.LastName != "Smith" || stored.FirstName != "Jo" {
			t.Errorf("stored = %+v", stored)
		}
	})
}
