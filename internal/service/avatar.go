package service

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path"
	"path/filepath"
	"snaketests_backend/internal/util"
	"strings"

	"golang.org/x/image/draw"
)

// AvatarUpload 表单上传的头像
type AvatarUpload struct {
	Filename string
	Reader   io.Reader
}

// ValidAvatarExtension 只接受 jpg/jpeg/png
func ValidAvatarExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range util.AllowedAvatarExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// thumbnail 等比缩放到 max×max 以内，不放大
func thumbnail(src image.Image, max int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= max && h <= max {
		return src
	}

	if w >= h {
		h = h * max / w
		w = max
	} else {
		w = w * max / h
		h = max
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// processAvatar 解码、缩略并重新编码，返回随机文件名
func processAvatar(upload AvatarUpload) (string, *bytes.Buffer, string, error) {
	if !ValidAvatarExtension(upload.Filename) {
		return "", nil, "", fmt.Errorf("unsupported avatar extension %q", filepath.Ext(upload.Filename))
	}

	src, _, err := image.Decode(upload.Reader)
	if err != nil {
		return "", nil, "", fmt.Errorf("decode avatar: %w", err)
	}
	thumb := thumbnail(src, util.AvatarMaxSide)

	ext := strings.ToLower(filepath.Ext(upload.Filename))
	buf := &bytes.Buffer{}
	contentType := "image/png"
	if ext == ".png" {
		err = png.Encode(buf, thumb)
	} else {
		contentType = "image/jpeg"
		err = jpeg.Encode(buf, thumb, &jpeg.Options{Quality: 90})
	}
	if err != nil {
		return "", nil, "", err
	}

	name, err := randomHex(8)
	if err != nil {
		return "", nil, "", err
	}
	return path.Join(util.AvatarDirectory, name+ext), buf, contentType, nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
