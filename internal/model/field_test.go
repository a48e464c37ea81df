package model

import (
	"testing"
)

// TestParseFieldType 测试字段类型解析
func TestParseFieldType(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    FieldType
		wantErr bool
	}{
		{"文本类型", "text", FieldTypeText, false},
		{"数字类型", "number", FieldTypeNumber, false},
		{"日期类型", "date", FieldTypeDate, false},
		{"布尔类型", "boolean", FieldTypeBoolean, false},
		{"下拉类型", "select", FieldTypeSelect, false},
		{"单选类型", "radio", FieldTypeRadio, false},
		{"复选类型", "checkbox", FieldTypeCheckbox, false},
		{"非法类型", "dropdown", "", true},
		{"大小写敏感", "Text", "", true},
		{"空串", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFieldType(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseFieldType(%q) expected error, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFieldType(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseFieldType(%q) = %q, expected %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestFieldTypeIsChoice 测试选项类字段判断
func TestFieldTypeIsChoice(t *testing.T) {
	choice := []FieldType{FieldTypeSelect, FieldTypeRadio, FieldTypeCheckbox}
	plain := []FieldType{FieldTypeText, FieldTypeNumber, FieldTypeDate, FieldTypeBoolean}

	for _, ft := range choice {
		if !ft.IsChoice() {
			t.Errorf("%s.IsChoice() = false, expected true", ft)
		}
	}
	for _, ft := range plain {
		if ft.IsChoice() {
			t.Errorf("%s.IsChoice() = true, expected false", ft)
		}
	}
}
