package validator

import (
	"errors"
	"testing"

	"eduverse_backend/internal/model"
	"eduverse_backend/internal/util"
)

func fields(t *testing.T, err error) map[string]string {
	t.Helper()
	if err == nil {
		return nil
	}
	if !errors.Is(err, util.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var ve util.ValidationErrors
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	out := make(map[string]string, len(ve))
	for _, e := range ve {
		out[e.Field] = e.Rule
	}
	return out
}

func TestValidateResource(t *testing.T) {
	v := New()
	tests := []struct {
		name       string
		req        ResourceRequest
		wantFields []string
	}{
		{"valid video", ResourceRequest{Title: "Intro", Type: "video", URL: "https://x/v.mp4", Duration: 12}, nil},
		{"legacy article is text", ResourceRequest{Title: "Read", Type: "article", Content: "body"}, nil},
		{"legacy document is file", ResourceRequest{Title: "Doc", Type: "Document", FilePath: "uploads/a.docx"}, nil},
		{"missing title and bad type", ResourceRequest{Type: "audio"}, []string{"title", "type"}},
		{"media without location", ResourceRequest{Title: "Slides", Type: "pdf"}, []string{"url"}},
		{"text without content", ResourceRequest{Title: "Note", Type: "text"}, []string{"content"}},
		{"duration on pdf", ResourceRequest{Title: "P", Type: "pdf", URL: "u", Duration: 3}, []string{"duration"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fields(t, v.ValidateResource(&tt.req))
			if len(got) != len(tt.wantFields) {
				t.Fatalf("got fields %v, want %v", got, tt.wantFields)
			}
			for _, f := range tt.wantFields {
				if _, ok := got[f]; !ok {
					t.Fatalf("missing field %q in %v", f, got)
				}
			}
		})
	}
}

func TestValidateResourceUpdateMergesExisting(t *testing.T) {
	v := New()
	existing := &model.Resource{Type: model.ResourceText, Content: "hello"}

	empty := ""
	if err := v.ValidateResourceUpdate(&ResourceUpdateRequest{Content: &empty}, existing); err == nil {
		t.Fatalf("clearing text content should fail")
	}

	video := "video"
	got := fields(t, v.ValidateResourceUpdate(&ResourceUpdateRequest{Type: &video}, existing))
	if _, ok := got["url"]; !ok {
		t.Fatalf("switching to video without url should fail, got %v", got)
	}

	title := "Renamed"
	if err := v.ValidateResourceUpdate(&ResourceUpdateRequest{Title: &title}, existing); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateAssignment(t *testing.T) {
	v := New()
	tests := []struct {
		name       string
		req        AssignmentRequest
		wantFields []string
	}{
		{"text ok", AssignmentRequest{Title: "Essay", DueDate: "2024-09-01", Points: 10, Type: "text", Prompt: "Write"}, nil},
		{"file ok", AssignmentRequest{Title: "Upload", DueDate: "2024-09-01", Type: "file", FilePath: "a.pdf"}, nil},
		{"both payloads", AssignmentRequest{Title: "X", DueDate: "2024-09-01", Type: "text", Prompt: "p", FilePath: "f"}, []string{"filePath"}},
		{"file missing path", AssignmentRequest{Title: "X", DueDate: "2024-09-01", Type: "file"}, []string{"filePath"}},
		{"bad date and points", AssignmentRequest{Title: "X", DueDate: "01/09/2024", Points: -1, Type: "text", Prompt: "p"}, []string{"dueDate", "points"}},
		{"bad type", AssignmentRequest{Title: "X", DueDate: "2024-09-01", Type: "video"}, []string{"type"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fields(t, v.ValidateAssignment(&tt.req))
			if len(got) != len(tt.wantFields) {
				t.Fatalf("got fields %v, want %v", got, tt.wantFields)
			}
			for _, f := range tt.wantFields {
				if _, ok := got[f]; !ok {
					t.Fatalf("missing field %q in %v", f, got)
				}
			}
		})
	}
}

func TestValidateQuizRequiresCorrectOption(t *testing.T) {
	v := New()
	req := &QuizRequest{
		Title: "Check",
		Questions: []QuestionRequest{
			{Text: "Q1", Options: []OptionRequest{{Text: "a", IsCorrect: true}, {Text: "b"}}},
			{Text: "Q2", Options: []OptionRequest{{Text: "a"}, {Text: "b"}}},
		},
	}
	got := fields(t, v.ValidateQuiz(req))
	if _, ok := got["questions[1].options"]; !ok || len(got) != 1 {
		t.Fatalf("expected only questions[1].options, got %v", got)
	}

	req.Questions[1].Options[0].IsCorrect = true
	if err := v.ValidateQuiz(req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateProgressUpdate(t *testing.T) {
	v := New()
	bad := "done"
	neg := int64(-5)
	got := fields(t, v.ValidateProgressUpdate(&ProgressUpdateRequest{UserID: "u1", Status: &bad, TimeSpent: &neg}))
	if got["status"] != "progress_status" || got["timeSpent"] != "min" {
		t.Fatalf("unexpected fields %v", got)
	}

	ok := "completed"
	if err := v.ValidateProgressUpdate(&ProgressUpdateRequest{UserID: "u1", Status: &ok}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateUser(t *testing.T) {
	v := New()
	got := fields(t, v.ValidateUser(&UserRequest{Name: "A", Email: "nope", Role: "guest"}))
	if got["email"] != "email" || got["role"] != "user_role" {
		t.Fatalf("unexpected fields %v", got)
	}
}
