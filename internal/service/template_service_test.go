package service

import (
	"testing"

	"github.com/HadiHz88/medical-records-api/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTemplateCreate 测试模板创建：字段顺序、选项写入、默认display_order
func TestTemplateCreate(t *testing.T) {
	db := setupTestDB(t)
	svc := newTemplateService(db)

	template := seedPatientTemplate(t, svc)

	assert.Equal(t, "门诊病历", template.Name)
	assert.Equal(t, int64(0), template.RecordsCount)

	// display_order 省略时默认为提交中的 1-based 位置
	for i, f := range template.Fields {
		assert.Equal(t, i+1, f.DisplayOrder, "field %s", f.FieldName)
	}

	blood := fieldByName(t, template, "血型")
	require.Len(t, blood.Options, 3)
	assert.Equal(t, "A型", blood.Options[0].OptionName)
	assert.Equal(t, "a", blood.Options[0].OptionValue)
	assert.True(t, blood.IsRequired)

	symptoms := fieldByName(t, template, "症状")
	assert.True(t, symptoms.IsMultiple)
	assert.Len(t, symptoms.Options, 3)
}

// TestTemplateCreateValidation 测试创建时的结构校验
func TestTemplateCreateValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := newTemplateService(db)

	tests := []struct {
		name string
		req  *CreateTemplateRequest
	}{
		{"缺少名称", &CreateTemplateRequest{Fields: []FieldInput{{FieldName: "a", FieldType: "text"}}}},
		{"字段集合为空", &CreateTemplateRequest{Name: "t"}},
		{"非法字段类型", &CreateTemplateRequest{Name: "t", Fields: []FieldInput{{FieldName: "a", FieldType: "dropdown"}}}},
		{"选项类字段无选项", &CreateTemplateRequest{Name: "t", Fields: []FieldInput{{FieldName: "a", FieldType: "select"}}}},
		{"选项缺少option_value", &CreateTemplateRequest{Name: "t", Fields: []FieldInput{
			{FieldName: "a", FieldType: "radio", Options: []OptionInput{{OptionName: "x"}}},
		}}},
		{"is_multiple用于非select类型", &CreateTemplateRequest{Name: "t", Fields: []FieldInput{
			{FieldName: "a", FieldType: "text", IsMultiple: true},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(tt.req)
			require.Error(t, err)
			var ve *ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}

	// 全部校验失败后不应留下任何模板
	var count int64
	require.NoError(t, db.Model(&model.Template{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

// TestTemplateGetNotFound 测试读取不存在的模板
func TestTemplateGetNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := newTemplateService(db)

	_, err := svc.Get(9999)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "template", nf.Resource)
}

// TestTemplateUpdateNameOnly 测试仅更新名称和描述，字段保持不动
func TestTemplateUpdateNameOnly(t *testing.T) {
	db := setupTestDB(t)
	svc := newTemplateService(db)
	template := seedPatientTemplate(t, svc)

	name := "住院病历"
	desc := "住院部使用"
	updated, err := svc.Update(template.ID, &UpdateTemplateRequest{Name: &name, Description: &desc})
	require.NoError(t, err)

	assert.Equal(t, "住院病历", updated.Name)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "住院部使用", *updated.Description)
	assert.Len(t, updated.Fields, 4)
}

// TestTemplateUpdateReplaceWithoutRecords 测试无记录时字段整体替换
func TestTemplateUpdateReplaceWithoutRecords(t *testing.T) {
	db := setupTestDB(t)
	svc := newTemplateService(db)
	template := seedPatientTemplate(t, svc)

	updated, err := svc.Update(template.ID, &UpdateTemplateRequest{
		Fields: []FieldInput{
			{FieldName: "主诉", FieldType: "text", IsRequired: true},
		},
	})
	require.NoError(t, err)
	require.Len(t, updated.Fields, 1)
	assert.Equal(t, "主诉", updated.Fields[0].FieldName)

	// 旧字段的选项不应残留
	var optionCount int64
	require.NoError(t, db.Model(&model.Option{}).Count(&optionCount).Error)
	assert.Equal(t, int64(0), optionCount)
}

// TestTemplateUpdateReconcileWithRecords 测试有记录时的增量对账
func TestTemplateUpdateReconcileWithRecords(t *testing.T) {
	db := setupTestDB(t)
	svc := newTemplateService(db)
	recordSvc := newRecordService(db)
	template := seedPatientTemplate(t, svc)

	// 写入一条记录：姓名+血型（必填项）
	name := fieldByName(t, template, "姓名")
	blood := fieldByName(t, template, "血型")
	_, err := recordSvc.Create(&CreateRecordRequest{
		TemplateID: template.ID,
		Fields: []ValueInput{
			{FieldID: name.ID, Value: strPtr("张三")},
			{FieldID: blood.ID, Value: strPtr("a")},
		},
	})
	require.NoError(t, err)

	t.Run("删除被值引用的字段被拒绝", func(t *testing.T) {
		// 提交中省略 姓名 字段（其余字段带 id 保留）
		symptoms := fieldByName(t, template, "症状")
		remark := fieldByName(t, template, "备注")
		_, err := svc.Update(template.ID, &UpdateTemplateRequest{
			Fields: []FieldInput{
				{ID: &blood.ID, FieldName: "血型", FieldType: "select", IsRequired: true, Options: optionInputs(blood)},
				{ID: &symptoms.ID, FieldName: "症状", FieldType: "select", IsMultiple: true, Options: optionInputs(symptoms)},
				{ID: &remark.ID, FieldName: "备注", FieldType: "text"},
			},
		})
		var cf *ConflictError
		require.ErrorAs(t, err, &cf)
	})

	t.Run("删除未被引用的字段和新增字段成功", func(t *testing.T) {
		symptoms := fieldByName(t, template, "症状")
		// 省略 备注（无值引用，可删），新增 体温
		updated, err := svc.Update(template.ID, &UpdateTemplateRequest{
			Fields: []FieldInput{
				{ID: &name.ID, FieldName: "姓名", FieldType: "text", IsRequired: true},
				{ID: &blood.ID, FieldName: "血型", FieldType: "select", IsRequired: true, Options: optionInputs(blood)},
				{ID: &symptoms.ID, FieldName: "症状", FieldType: "select", IsMultiple: true, Options: optionInputs(symptoms)},
				{FieldName: "体温", FieldType: "number"},
			},
		})
		require.NoError(t, err)
		assert.Len(t, updated.Fields, 4)
		assert.NotNil(t, findField(updated, "体温"))
		assert.Nil(t, findField(updated, "备注"))
	})

	t.Run("删除被引用的选项被拒绝", func(t *testing.T) {
		// 记录选了 a，提交的血型选项集合去掉 a
		var keep []OptionInput
		for _, o := range blood.Options {
			if o.OptionValue != "a" {
				id := o.ID
				keep = append(keep, OptionInput{ID: &id, OptionName: o.OptionName, OptionValue: o.OptionValue})
			}
		}
		_, err := svc.Update(template.ID, &UpdateTemplateRequest{
			Fields: []FieldInput{
				{ID: &name.ID, FieldName: "姓名", FieldType: "text", IsRequired: true},
				{ID: &blood.ID, FieldName: "血型", FieldType: "select", IsRequired: true, Options: keep},
			},
		})
		var cf *ConflictError
		require.ErrorAs(t, err, &cf)
	})
}

// TestTemplateDelete 测试模板删除的数据保护
func TestTemplateDelete(t *testing.T) {
	db := setupTestDB(t)
	svc := newTemplateService(db)
	recordSvc := newRecordService(db)

	t.Run("无记录时删除成功且级联清理", func(t *testing.T) {
		template := seedPatientTemplate(t, svc)
		require.NoError(t, svc.Delete(template.ID))

		_, err := svc.Get(template.ID)
		var nf *NotFoundError
		require.ErrorAs(t, err, &nf)

		var fieldCount, optionCount int64
		require.NoError(t, db.Model(&model.Field{}).Where("template_id = ?", template.ID).Count(&fieldCount).Error)
		assert.Equal(t, int64(0), fieldCount)
		require.NoError(t, db.Model(&model.Option{}).Count(&optionCount).Error)
		assert.Equal(t, int64(0), optionCount)
	})

	t.Run("有记录时删除被拒绝", func(t *testing.T) {
		template := seedPatientTemplate(t, svc)
		name := fieldByName(t, template, "姓名")
		blood := fieldByName(t, template, "血型")
		_, err := recordSvc.Create(&CreateRecordRequest{
			TemplateID: template.ID,
			Fields: []ValueInput{
				{FieldID: name.ID, Value: strPtr("李四")},
				{FieldID: blood.ID, Value: strPtr("b")},
			},
		})
		require.NoError(t, err)

		err = svc.Delete(template.ID)
		var cf *ConflictError
		require.ErrorAs(t, err, &cf)

		// 模板必须原样保留
		got, err := svc.Get(template.ID)
		require.NoError(t, err)
		assert.Len(t, got.Fields, 4)
	})
}

// TestFieldOperations 测试单字段的追加/更新/删除
func TestFieldOperations(t *testing.T) {
	db := setupTestDB(t)
	svc := newTemplateService(db)
	recordSvc := newRecordService(db)
	template := seedPatientTemplate(t, svc)

	t.Run("追加字段默认排到末尾", func(t *testing.T) {
		field, err := svc.AddField(template.ID, &FieldInput{FieldName: "身高", FieldType: "number"})
		require.NoError(t, err)
		assert.Equal(t, 5, field.DisplayOrder)
	})

	t.Run("更新字段属于其他模板时按不存在处理", func(t *testing.T) {
		other := seedPatientTemplate(t, svc)
		field := fieldByName(t, other, "备注")
		_, err := svc.UpdateField(template.ID, field.ID, &FieldInput{FieldName: "x", FieldType: "text"})
		var nf *NotFoundError
		require.ErrorAs(t, err, &nf)
	})

	t.Run("删除被值引用的字段被拒绝", func(t *testing.T) {
		name := fieldByName(t, template, "姓名")
		blood := fieldByName(t, template, "血型")
		_, err := recordSvc.Create(&CreateRecordRequest{
			TemplateID: template.ID,
			Fields: []ValueInput{
				{FieldID: name.ID, Value: strPtr("王五")},
				{FieldID: blood.ID, Value: strPtr("o")},
			},
		})
		require.NoError(t, err)

		err = svc.DeleteField(template.ID, name.ID)
		var cf *ConflictError
		require.ErrorAs(t, err, &cf)
	})

	t.Run("删除未被引用的字段成功", func(t *testing.T) {
		remark := fieldByName(t, template, "备注")
		require.NoError(t, svc.DeleteField(template.ID, remark.ID))

		fields, err := svc.ListFields(template.ID)
		require.NoError(t, err)
		for _, f := range fields {
			assert.NotEqual(t, "备注", f.FieldName)
		}
	})
}

func optionInputs(field *model.Field) []OptionInput {
	inputs := make([]OptionInput, 0, len(field.Options))
	for _, o := range field.Options {
		id := o.ID
		inputs = append(inputs, OptionInput{ID: &id, OptionName: o.OptionName, OptionValue: o.OptionValue})
	}
	return inputs
}

func findField(template *model.Template, name string) *model.Field {
	for i := range template.Fields {
		if template.Fields[i].FieldName == name {
			return &template.Fields[i]
		}
	}
	return nil
}
