package utils

import "testing"

func TestFileExtension(t *testing.T) {
	cases := []struct {
		filename string
		want     string
	}{
		{"contract.pdf", "pdf"},
		{"Report.PDF", "pdf"},
		{"archive.tar.gz", "gz"},
		{"noextension", ""},
		{".env", "env"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := FileExtension(tc.filename); got != tc.want {
			t.Errorf("FileExtension(%q) = %q, want %q", tc.filename, got, tc.want)
		}
	}
}

func TestExtensionAllowed(t *testing.T) {
	allowed := []string{"jpg", "pdf", "DOCX"}

	if !ExtensionAllowed("pdf", allowed) {
		t.Errorf("pdf rejected")
	}
	if !ExtensionAllowed("PDF", allowed) {
		t.Errorf("extension check not case-insensitive")
	}
	if !ExtensionAllowed("docx", allowed) {
		t.Errorf("allow-list entry not matched case-insensitively")
	}
	if ExtensionAllowed("exe", allowed) {
		t.Errorf("exe accepted")
	}
	if ExtensionAllowed("", allowed) {
		t.Errorf("empty extension accepted")
	}
}

func TestIsImageExtension(t *testing.T) {
	for _, ext := range []string{"jpg", "jpeg", "png", "JPG"} {
		if !IsImageExtension(ext) {
			t.Errorf("%q not classified as image", ext)
		}
	}
	for _, ext := range []string{"pdf", "docx", ""} {
		if IsImageExtension(ext) {
			t.Errorf("%q classified as image", ext)
		}
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "s3cret" {
		t.Fatalf("password stored in the clear")
	}
	if !VerifyPassword(hash, "s3cret") {
		t.Fatalf("correct password rejected")
	}
	if VerifyPassword(hash, "wrong") {
		t.Fatalf("wrong password accepted")
	}
}
