package storage

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"
)

func uploadedFile(t *testing.T, content string) multipart.File {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("video", "clip.mp4")
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	part.Write([]byte(content))
	writer.Close()

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	file, _, err := req.FormFile("video")
	if err != nil {
		t.Fatalf("Failed to read form file: %v", err)
	}
	return file
}

func TestLocalStorageSaveAndOpen(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	file := uploadedFile(t, "video bytes")
	defer file.Close()

	filename, err := ls.SaveFile(file, FileInfo{Filename: "clip.mp4", ContentType: "video/mp4", Size: 11})
	if err != nil {
		t.Fatalf("Failed to save file: %v", err)
	}
	if !strings.HasSuffix(filename, ".mp4") {
		t.Errorf("Expected stored name to keep the extension, got %s", filename)
	}

	reader, err := ls.OpenFile(filename)
	if err != nil {
		t.Fatalf("Failed to open saved file: %v", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("Failed to read saved file: %v", err)
	}
	if string(data) != "video bytes" {
		t.Errorf("Saved content mismatch: %q", data)
	}
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	if _, err := ls.OpenFile("../secret"); err == nil {
		t.Error("Expected traversal path to be rejected")
	}
	if err := ls.DeleteFile("../../etc/passwd"); err == nil {
		t.Error("Expected traversal delete to be rejected")
	}
}

func TestLocalStorageListAndDelete(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	file := uploadedFile(t, "content")
	defer file.Close()
	filename, err := ls.SaveFile(file, FileInfo{Filename: "clip.mp4"})
	if err != nil {
		t.Fatalf("Failed to save file: %v", err)
	}

	files, err := ls.ListFiles()
	if err != nil {
		t.Fatalf("Failed to list files: %v", err)
	}
	if len(files) != 1 || files[0] != filename {
		t.Errorf("Expected [%s], got %v", filename, files)
	}

	if err := ls.DeleteFile(filename); err != nil {
		t.Fatalf("Failed to delete file: %v", err)
	}
	files, _ = ls.ListFiles()
	if len(files) != 0 {
		t.Errorf("Expected empty storage after delete, got %v", files)
	}
}
