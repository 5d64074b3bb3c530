package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"snaketests_backend/internal/model"
	"snaketests_backend/internal/util"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestThumbnail(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"landscape", 400, 200, 200, 100},
		{"portrait", 100, 500, 40, 200},
		{"small stays", 50, 80, 50, 80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := thumbnail(image.NewRGBA(image.Rect(0, 0, tt.w, tt.h)), util.AvatarMaxSide).Bounds()
			if got.Dx() != tt.wantW || got.Dy() != tt.wantH {
				t.Errorf("thumbnail = %dx%d, want %dx%d", got.Dx(), got.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestValidAvatarExtension(t *testing.T) {
	for name, want := range map[string]bool{"me.png": true, "me.JPG": true, "me.jpeg": true, "me.gif": false, "me": false} {
		if got := ValidAvatarExtension(name); got != want {
			t.Errorf("ValidAvatarExtension(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestUpdateProfileStoresAvatar(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "pic")

	req := ProfileRequest{Username: "pic", Email: "pic@example.com", FirstName: "Pi"}
	upload := &AvatarUpload{Filename: "me.png", Reader: bytes.NewReader(pngBytes(t, 600, 300))}
	if err := env.profile.UpdateProfile(context.Background(), user, req, upload); err != nil {
		t.Fatalf("update: %v", err)
	}
	if !strings.HasPrefix(user.Image, util.AvatarDirectory+"/") || user.Image == model.DefaultAvatar {
		t.Fatalf("image = %q", user.Image)
	}

	f, err := os.Open(filepath.Join(env.cfg.Storage.LocalPath, user.Image))
	if err != nil {
		t.Fatalf("stored avatar: %v", err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode stored avatar: %v", err)
	}
	if cfg.Width != 200 || cfg.Height != 100 {
		t.Errorf("stored avatar = %dx%d", cfg.Width, cfg.Height)
	}
	if got := env.profile.Profile(user).Image; got != "/uploads/"+user.Image {
		t.Errorf("profile image url = %q", got)
	}
}

func TestUpdateProfileRejectsTakenEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "first")
	second := env.register(t, "second")

	err := env.profile.UpdateProfile(context.Background(), second, ProfileRequest{Username: "second", Email: "first@example.com"}, nil)
	errs, ok := err.(util.FormErrors)
	if !ok || errs["email"] == "" {
		t.Fatalf("err = %v", err)
	}

	err = env.profile.UpdateProfile(context.Background(), second, ProfileRequest{Username: "second", Email: "second@example.com"}, &AvatarUpload{Filename: "x.gif"})
	errs, ok = err.(util.FormErrors)
	if !ok || errs["image"] == "" {
		t.Fatalf("gif avatar err = %v", err)
	}
}
