package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/habitlog/internal/tracker"
)

// EncodeJSON 将文档序列化为带两空格缩进的 JSON
func EncodeJSON(doc *tracker.Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// DecodeDocument 解析导入内容，只做结构层面的校验，默认值交给 tracker.Normalize 补齐。
// 顶层不是对象、habits 不是数组或含 null 元素、logs 不是对象或日志键不是规范日期时返回 ErrMalformedInput。
func DecodeDocument(data []byte) (*tracker.RawDocument, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty payload", tracker.ErrMalformedInput)
	}

	var shape map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &shape); err != nil || shape == nil {
		return nil, fmt.Errorf("%w: top level must be an object", tracker.ErrMalformedInput)
	}

	if raw, ok := shape["habits"]; ok && !isNull(raw) {
		var habits []json.RawMessage
		if err := json.Unmarshal(raw, &habits); err != nil {
			return nil, fmt.Errorf("%w: habits must be an array", tracker.ErrMalformedInput)
		}
		for idx, habit := range habits {
			if isNull(habit) {
				return nil, fmt.Errorf("%w: habit #%d is null", tracker.ErrMalformedInput, idx)
			}
		}
	}

	if raw, ok := shape["logs"]; ok && !isNull(raw) {
		var logs map[string]json.RawMessage
		if err := json.Unmarshal(raw, &logs); err != nil {
			return nil, fmt.Errorf("%w: logs must be an object", tracker.ErrMalformedInput)
		}
		for date := range logs {
			if !tracker.IsCanonicalDate(date) {
				return nil, fmt.Errorf("%w: invalid log date %q", tracker.ErrMalformedInput, date)
			}
		}
	}

	var doc tracker.RawDocument
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", tracker.ErrMalformedInput, err)
	}
	return &doc, nil
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
