package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestServerClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.Client(), srv.URL, "test-token")
}

func TestSendMessageReturnsMessageID(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotReq sendMessageRequest
	client := newTestServerClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(sendMessageResponse{OK: true, Result: Message{MessageID: 555}})
	}))

	id, err := client.SendMessage(context.Background(), 42, "hello", SendOptions{
		ParseMode:        "HTML",
		ReplyToMessageID: 7,
	})
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if id != 555 {
		t.Fatalf("message id mismatch: got %d want 555", id)
	}
	if gotPath != "/bottest-token/sendMessage" {
		t.Fatalf("path mismatch: got %q", gotPath)
	}
	if gotReq.ChatID != 42 || gotReq.Text != "hello" {
		t.Fatalf("request mismatch: %+v", gotReq)
	}
	if gotReq.ParseMode != "HTML" || gotReq.ReplyToMessageID != 7 {
		t.Fatalf("options mismatch: %+v", gotReq)
	}
}

func TestSendMessageNonOKStatus(t *testing.T) {
	t.Parallel()

	client := newTestServerClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false,"description":"Bad Request"}`, http.StatusBadRequest)
	}))

	_, err := client.SendMessage(context.Background(), 42, "hello", SendOptions{})
	if err == nil {
		t.Fatalf("SendMessage() error = nil, want http error")
	}
	if !strings.Contains(err.Error(), "telegram http 400") {
		t.Fatalf("error mismatch: got %q", err.Error())
	}
}

func TestSendChatActionPostsAction(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotReq sendChatActionRequest
	client := newTestServerClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(okResponse{OK: true})
	}))

	if err := client.SendChatAction(context.Background(), 42, "typing"); err != nil {
		t.Fatalf("SendChatAction() error = %v", err)
	}
	if gotPath != "/bottest-token/sendChatAction" {
		t.Fatalf("path mismatch: got %q", gotPath)
	}
	if gotReq.ChatID != 42 || gotReq.Action != "typing" {
		t.Fatalf("request mismatch: %+v", gotReq)
	}

	// An empty action falls back to typing.
	if err := client.SendChatAction(context.Background(), 42, ""); err != nil {
		t.Fatalf("SendChatAction() error = %v", err)
	}
	if gotReq.Action != "typing" {
		t.Fatalf("default action mismatch: got %q want typing", gotReq.Action)
	}
}

func TestGetUpdatesAdvancesOffset(t *testing.T) {
	t.Parallel()

	client := newTestServerClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := getUpdatesResponse{OK: true, Result: []Update{
			{UpdateID: 10},
			{UpdateID: 12},
			{UpdateID: 11},
		}}
		_ = json.NewEncoder(w).Encode(resp)
	}))

	updates, next, err := client.GetUpdates(context.Background(), 5, time.Second)
	if err != nil {
		t.Fatalf("GetUpdates() error = %v", err)
	}
	if len(updates) != 3 {
		t.Fatalf("updates count mismatch: got %d want 3", len(updates))
	}
	if next != 13 {
		t.Fatalf("next offset mismatch: got %d want 13", next)
	}
}

func TestGetUpdatesEmptyKeepsOffset(t *testing.T) {
	t.Parallel()

	client := newTestServerClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(getUpdatesResponse{OK: true})
	}))

	_, next, err := client.GetUpdates(context.Background(), 5, time.Second)
	if err != nil {
		t.Fatalf("GetUpdates() error = %v", err)
	}
	if next != 5 {
		t.Fatalf("next offset mismatch: got %d want 5", next)
	}
}

func TestDownloadFileWritesContent(t *testing.T) {
	t.Parallel()

	client := newTestServerClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getFile"):
			_ = json.NewEncoder(w).Encode(getFileResponse{OK: true, Result: File{FileID: "abc", FilePath: "documents/file_1.srt"}})
		case strings.Contains(r.URL.Path, "/file/bottest-token/documents/file_1.srt"):
			_, _ = w.Write([]byte("subtitle bytes"))
		default:
			http.NotFound(w, r)
		}
	}))

	dst := filepath.Join(t.TempDir(), "dl.srt")
	if err := client.DownloadFile(context.Background(), "abc", dst, 1024); err != nil {
		t.Fatalf("DownloadFile() error = %v", err)
	}
	raw, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(raw) != "subtitle bytes" {
		t.Fatalf("content mismatch: got %q", raw)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("perm mismatch: got %o want 600", perm)
	}
}

func TestDownloadFileEnforcesCapAndRemovesPartial(t *testing.T) {
	t.Parallel()

	client := newTestServerClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getFile"):
			_ = json.NewEncoder(w).Encode(getFileResponse{OK: true, Result: File{FileID: "abc", FilePath: "documents/big.srt"}})
		default:
			_, _ = w.Write(make([]byte, 2048))
		}
	}))

	dst := filepath.Join(t.TempDir(), "dl.srt")
	err := client.DownloadFile(context.Background(), "abc", dst, 1024)
	if err == nil {
		t.Fatalf("DownloadFile() error = nil, want size cap error")
	}
	if !strings.Contains(err.Error(), "too large") {
		t.Fatalf("error mismatch: got %q", err.Error())
	}
	if _, statErr := os.Stat(dst); !os.IsNotExist(statErr) {
		t.Fatalf("partial file left behind: %v", statErr)
	}
}

func TestDownloadFileMissingFilePath(t *testing.T) {
	t.Parallel()

	client := newTestServerClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(getFileResponse{OK: true, Result: File{FileID: "abc"}})
	}))

	err := client.DownloadFile(context.Background(), "abc", filepath.Join(t.TempDir(), "dl.srt"), 1024)
	if err == nil || !strings.Contains(err.Error(), "file_path") {
		t.Fatalf("error mismatch: got %v", err)
	}
}

func TestMessageTextOrCaption(t *testing.T) {
	t.Parallel()

	if got := MessageTextOrCaption(nil); got != "" {
		t.Fatalf("nil message mismatch: got %q", got)
	}
	if got := MessageTextOrCaption(&Message{Text: "hi", Caption: "cap"}); got != "hi" {
		t.Fatalf("text mismatch: got %q", got)
	}
	if got := MessageTextOrCaption(&Message{Caption: "cap"}); got != "cap" {
		t.Fatalf("caption fallback mismatch: got %q", got)
	}
}
