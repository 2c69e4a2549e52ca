package agent

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/alexanderramin/ganttagent/internal/dateexpr"
	"github.com/alexanderramin/ganttagent/internal/domain"
)

// ValidateActionParams checks params against the shape expected for kind.
// Kinds without a validator pass unchecked. Recoverable forms are rewritten
// in place: numeric strings become numbers and status/priority take their
// canonical spelling.
func ValidateActionParams(kind string, params map[string]any) *ActionShapeError {
	validator, ok := actionParamValidators[kind]
	if !ok {
		return nil
	}
	if reason := validator(params); reason != "" {
		return &ActionShapeError{Type: kind, Reason: reason}
	}
	return nil
}

type paramValidator func(map[string]any) string

var actionParamValidators = map[string]paramValidator{
	KindAddTask:          validateAddTaskParams,
	KindUpdateTask:       validateUpdateTaskParams,
	KindSetProgress:      validateSetProgressParams,
	KindAddMilestone:     validateAddMilestoneParams,
	KindAddBucket:        validateAddBucketParams,
	KindCollapseBucket:   validateCollapseBucketParams,
	KindAddDependency:    validateDependencyParams,
	KindRemoveDependency: validateDependencyParams,
}

// dateParams are the keys that must hold YYYY-MM-DD when present.
var dateParams = []string{"startDate", "dueDate", "date"}

var validCollapseTargets = map[string]bool{
	string(domain.BucketTask):      true,
	string(domain.BucketMilestone): true,
	"all":                          true,
}

func validateAddTaskParams(params map[string]any) string {
	if _, ok := getString(params, "title"); !ok {
		return "title is required for add_task"
	}
	normalizeTaskEnums(params)
	return firstOf(checkDates(params), checkProgress(params))
}

func validateUpdateTaskParams(params map[string]any) string {
	for _, key := range []string{"shiftWeeks", "shiftDays"} {
		if v, exists := params[key]; exists && v != nil {
			n, ok := toNumber(v)
			if !ok {
				return key + " must be a number"
			}
			params[key] = n
		}
	}
	normalizeTaskEnums(params)
	return firstOf(checkDates(params), checkProgress(params))
}

func validateSetProgressParams(params map[string]any) string {
	if v, exists := params["progress"]; !exists || v == nil {
		return "progress is required for set_progress"
	}
	return checkProgress(params)
}

func validateAddMilestoneParams(params map[string]any) string {
	if _, ok := getString(params, "title"); !ok {
		return "title is required for add_milestone"
	}
	return checkDates(params)
}

func validateAddBucketParams(params map[string]any) string {
	if _, ok := getString(params, "name"); !ok {
		return "name is required for add_bucket"
	}
	if v, exists := params["bucketType"]; exists {
		s, isStr := v.(string)
		if !isStr || (s != string(domain.BucketTask) && s != string(domain.BucketMilestone)) {
			return "bucketType must be 'task' or 'milestone'"
		}
	}
	return ""
}

func validateCollapseBucketParams(params map[string]any) string {
	if v, exists := params["collapsed"]; exists {
		if _, ok := v.(bool); !ok {
			return "collapsed must be a boolean"
		}
	}
	if v, exists := params["bucketType"]; exists {
		s, isStr := v.(string)
		if !isStr || !validCollapseTargets[s] {
			return "bucketType must be 'task', 'milestone' or 'all'"
		}
	}
	return ""
}

func validateDependencyParams(params map[string]any) string {
	if _, ok := getString(params, "taskId"); !ok {
		return "taskId is required"
	}
	if _, ok := getString(params, "dependsOnTaskId"); !ok {
		return "dependsOnTaskId is required"
	}
	return ""
}

func checkDates(params map[string]any) string {
	for _, key := range dateParams {
		v, exists := params[key]
		if !exists || v == nil {
			continue
		}
		s, ok := v.(string)
		if ok && strings.TrimSpace(s) == "" {
			continue
		}
		if !ok || !dateexpr.IsAbsolute(strings.TrimSpace(s)) {
			return fmt.Sprintf("%s must be a YYYY-MM-DD date, got %v", key, v)
		}
	}
	return ""
}

func checkProgress(params map[string]any) string {
	v, exists := params["progress"]
	if !exists || v == nil {
		return ""
	}
	if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
		delete(params, "progress")
		return ""
	}
	p, ok := toNumber(v)
	if !ok {
		return "progress must be a number"
	}
	if p < 0 || p > 100 {
		return fmt.Sprintf("progress must be within 0-100, got %g", p)
	}
	params["progress"] = p
	return ""
}

// normalizeTaskEnums rewrites status and priority to the spelling the
// front-end expects. Unknown values are left for the front-end to judge.
func normalizeTaskEnums(params map[string]any) {
	if s, ok := params["status"].(string); ok {
		if st, known := domain.ParseTaskStatus(s); known {
			params["status"] = string(st)
		}
	}
	if s, ok := params["priority"].(string); ok {
		if p, known := domain.ParsePriority(s); known {
			params["priority"] = string(p)
		}
	}
}

func firstOf(reasons ...string) string {
	for _, r := range reasons {
		if r != "" {
			return r
		}
	}
	return ""
}

func getString(params map[string]any, key string) (string, bool) {
	v, ok := params[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && strings.TrimSpace(s) != ""
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(n), "%"), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
