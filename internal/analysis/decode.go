package analysis

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.uber.org/zap"
)

// Field schemas. Lists are validated as arrays first, then item by item, so
// one bad entry costs only that entry.
var schemas = map[string]any{
	"string": map[string]any{"type": "string"},
	"array":  map[string]any{"type": "array"},
	"integer": map[string]any{
		"type": "integer",
	},
	"question": map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{"type": "string"},
			"options": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
	},
}

// schemaCache caches compiled field schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

func compiledSchema(name string) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	def, ok := schemas[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", name)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", name)
	if err := c.AddResource(url, def); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}

	schemaCache.Store(name, compiled)
	return compiled, nil
}

func conforms(name string, v any) error {
	s, err := compiledSchema(name)
	if err != nil {
		return err
	}
	return s.Validate(v)
}

// decodeResult builds a Result from a success body. Only invalid JSON is an
// error; anything else of the wrong shape is dropped and logged.
func decodeResult(body []byte, log *zap.Logger) (*Result, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	res := &Result{}
	obj, ok := doc.(map[string]any)
	if !ok {
		log.Warn("response is not an object, rendering empty result")
		return res, nil
	}

	res.Summary = stringField(obj, "summary", log)
	res.FileName = stringField(obj, "fileName", log)
	res.KeyPoints = stringList(obj, "keyPoints", log)
	res.StudyGuide = stringList(obj, "studyGuide", log)
	res.QuizQuestions = questionList(obj, "quizQuestions", log)

	return res, nil
}

func stringField(obj map[string]any, key string, log *zap.Logger) string {
	v, ok := obj[key]
	if !ok || v == nil {
		return ""
	}
	if err := conforms("string", v); err != nil {
		log.Warn("dropping malformed field", zap.String("field", key), zap.Error(err))
		return ""
	}
	return v.(string)
}

func items(obj map[string]any, key string, log *zap.Logger) []any {
	v, ok := obj[key]
	if !ok || v == nil {
		return nil
	}
	if err := conforms("array", v); err != nil {
		log.Warn("dropping malformed field", zap.String("field", key), zap.Error(err))
		return nil
	}
	return v.([]any)
}

func stringList(obj map[string]any, key string, log *zap.Logger) []string {
	var out []string
	for i, item := range items(obj, key, log) {
		if err := conforms("string", item); err != nil {
			log.Warn("skipping malformed item",
				zap.String("field", key), zap.Int("index", i), zap.Error(err))
			continue
		}
		out = append(out, item.(string))
	}
	return out
}

func questionList(obj map[string]any, key string, log *zap.Logger) []Question {
	var out []Question
	for i, item := range items(obj, key, log) {
		if err := conforms("question", item); err != nil {
			log.Warn("skipping malformed question", zap.Int("index", i), zap.Error(err))
			continue
		}
		m := item.(map[string]any)

		q := Question{}
		if s, ok := m["question"].(string); ok {
			q.Question = s
		}
		if opts, ok := m["options"].([]any); ok {
			q.Options = make([]string, 0, len(opts))
			for _, o := range opts {
				q.Options = append(q.Options, o.(string))
			}
		}
		if c, ok := m["correct"]; ok && c != nil {
			if err := conforms("integer", c); err != nil {
				log.Warn("ignoring non-integer answer index", zap.Int("index", i), zap.Error(err))
			} else if f, ok := c.(float64); ok {
				n := int(f)
				q.Correct = &n
			}
		}
		out = append(out, q)
	}
	return out
}

// errorMessage extracts the service's error text from a failure body.
func errorMessage(body []byte) string {
	var payload struct {
		Error any `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return DefaultErrorMessage
	}
	if s, ok := payload.Error.(string); ok && s != "" {
		return s
	}
	return DefaultErrorMessage
}
