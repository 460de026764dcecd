package validator

import (
	"fmt"
	"strings"

	"eduverse_backend/internal/model"
	"eduverse_backend/internal/util"
)

func (v *Validator) ValidateCourse(req *CourseRequest) error {
	return v.Struct(req).OrNil()
}

func (v *Validator) ValidateModule(req *ModuleRequest) error {
	return v.Struct(req).OrNil()
}

func (v *Validator) ValidateUser(req *UserRequest) error {
	return v.Struct(req).OrNil()
}

// ValidateResource 媒体类资源需要 url 或 filePath，text 资源需要 content
func (v *Validator) ValidateResource(req *ResourceRequest) error {
	errs := v.Struct(req)
	t := model.NormalizeResourceType(req.Type)
	errs = append(errs, resourcePayloadRules(t, req.URL, req.FilePath, req.Content)...)
	if req.Duration > 0 && t.Valid() && t != model.ResourceVideo {
		errs = append(errs, util.ValidationError{Field: "duration", Message: "only video resources carry a duration", Rule: "business_logic"})
	}
	return errs.OrNil()
}

// ValidateResourceUpdate 用合并后的值校验载荷规则
func (v *Validator) ValidateResourceUpdate(req *ResourceUpdateRequest, existing *model.Resource) error {
	errs := v.Struct(req)

	t := existing.Type
	if req.Type != nil {
		t = model.NormalizeResourceType(*req.Type)
	}
	url, filePath, content := existing.URL, existing.FilePath, existing.Content
	if req.URL != nil {
		url = *req.URL
	}
	if req.FilePath != nil {
		filePath = *req.FilePath
	}
	if req.Content != nil {
		content = *req.Content
	}
	errs = append(errs, resourcePayloadRules(t, url, filePath, content)...)
	return errs.OrNil()
}

func resourcePayloadRules(t model.ResourceType, url, filePath, content string) util.ValidationErrors {
	var errs util.ValidationErrors
	if !t.Valid() {
		return errs
	}
	if t.IsMedia() && strings.TrimSpace(url) == "" && strings.TrimSpace(filePath) == "" {
		errs = append(errs, util.ValidationError{
			Field:   "url",
			Message: fmt.Sprintf("url or filePath is required for %s resources", t),
			Rule:    "business_logic",
		})
	}
	if t == model.ResourceText && strings.TrimSpace(content) == "" {
		errs = append(errs, util.ValidationError{
			Field:   "content",
			Message: "is required for text resources",
			Rule:    "business_logic",
		})
	}
	return errs
}

// ValidateAssignment prompt 与 filePath 必须且只能出现一个，并与类型对应
func (v *Validator) ValidateAssignment(req *AssignmentRequest) error {
	errs := v.Struct(req)

	hasPrompt := strings.TrimSpace(req.Prompt) != ""
	hasFile := strings.TrimSpace(req.FilePath) != ""
	switch model.AssignmentType(req.Type) {
	case model.AssignmentText:
		if !hasPrompt {
			errs = append(errs, util.ValidationError{Field: "prompt", Message: "is required for text assignments", Rule: "business_logic"})
		}
		if hasFile {
			errs = append(errs, util.ValidationError{Field: "filePath", Message: "must be empty for text assignments", Rule: "business_logic"})
		}
	case model.AssignmentFile:
		if !hasFile {
			errs = append(errs, util.ValidationError{Field: "filePath", Message: "is required for file assignments", Rule: "business_logic"})
		}
		if hasPrompt {
			errs = append(errs, util.ValidationError{Field: "prompt", Message: "must be empty for file assignments", Rule: "business_logic"})
		}
	}
	return errs.OrNil()
}

// ValidateQuiz 每道题至少有一个正确选项
func (v *Validator) ValidateQuiz(req *QuizRequest) error {
	errs := v.Struct(req)
	for i, q := range req.Questions {
		if len(q.Options) == 0 {
			continue
		}
		correct := false
		for _, o := range q.Options {
			if o.IsCorrect {
				correct = true
				break
			}
		}
		if !correct {
			errs = append(errs, util.ValidationError{
				Field:   fmt.Sprintf("questions[%d].options", i),
				Message: "must include at least one correct option",
				Rule:    "business_logic",
			})
		}
	}
	return errs.OrNil()
}

func (v *Validator) ValidateProgressUpdate(req *ProgressUpdateRequest) error {
	return v.Struct(req).OrNil()
}
