package service

import (
	"strings"
	"testing"

	"github.com/HadiHz88/medical-records-api/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRecordCreate 测试记录创建的校验与原子写入
func TestRecordCreate(t *testing.T) {
	db := setupTestDB(t)
	templateSvc := newTemplateService(db)
	svc := newRecordService(db)
	template := seedPatientTemplate(t, templateSvc)

	name := fieldByName(t, template, "姓名")
	blood := fieldByName(t, template, "血型")
	symptoms := fieldByName(t, template, "症状")
	remark := fieldByName(t, template, "备注")

	t.Run("完整提交成功", func(t *testing.T) {
		record, err := svc.Create(&CreateRecordRequest{
			TemplateID: template.ID,
			Fields: []ValueInput{
				{FieldID: name.ID, Value: strPtr("张三")},
				{FieldID: blood.ID, Value: strPtr("a")},
				{FieldID: symptoms.ID, Values: []string{"fever", "cough"}},
			},
		})
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(record.RecordNumber, "REC-"))
		assert.Equal(t, template.ID, record.TemplateID)
		require.Len(t, record.Values, 3)

		// 单选字段回填 option_id
		var bloodValue *model.Value
		for i := range record.Values {
			if record.Values[i].FieldID == blood.ID {
				bloodValue = &record.Values[i]
			}
		}
		require.NotNil(t, bloodValue)
		require.NotNil(t, bloodValue.OptionID)
		assert.Equal(t, blood.Options[0].ID, *bloodValue.OptionID)

		// 多选字段的选中项按提交顺序存入多选表
		var msValue *model.Value
		for i := range record.Values {
			if record.Values[i].FieldID == symptoms.ID {
				msValue = &record.Values[i]
			}
		}
		require.NotNil(t, msValue)
		assert.Nil(t, msValue.Value)
		require.Len(t, msValue.MultipleSelections, 2)
		assert.Equal(t, symptoms.Options[0].ID, msValue.MultipleSelections[0].OptionID)
		assert.Equal(t, symptoms.Options[1].ID, msValue.MultipleSelections[1].OptionID)
	})

	t.Run("可选字段未提交不产生值行", func(t *testing.T) {
		record, err := svc.Create(&CreateRecordRequest{
			TemplateID: template.ID,
			Fields: []ValueInput{
				{FieldID: name.ID, Value: strPtr("李四")},
				{FieldID: blood.ID, Value: strPtr("b")},
				{FieldID: remark.ID, Value: strPtr("")},
			},
		})
		require.NoError(t, err)
		assert.Len(t, record.Values, 2)
	})

	t.Run("多选重复提交各占一行", func(t *testing.T) {
		record, err := svc.Create(&CreateRecordRequest{
			TemplateID: template.ID,
			Fields: []ValueInput{
				{FieldID: name.ID, Value: strPtr("王五")},
				{FieldID: blood.ID, Value: strPtr("o")},
				{FieldID: symptoms.ID, Values: []string{"fever", "fever"}},
			},
		})
		require.NoError(t, err)

		var selections int64
		require.NoError(t, db.Model(&model.MultipleSelection{}).
			Joins("JOIN `values` ON `values`.id = multiple_selections.value_id").
			Where("`values`.record_id = ?", record.ID).
			Count(&selections).Error)
		assert.Equal(t, int64(2), selections)
	})
}

// TestRecordCreateFailuresAreAtomic 测试任何校验失败都不留下半成品
func TestRecordCreateFailuresAreAtomic(t *testing.T) {
	db := setupTestDB(t)
	templateSvc := newTemplateService(db)
	svc := newRecordService(db)
	template := seedPatientTemplate(t, templateSvc)

	name := fieldByName(t, template, "姓名")
	blood := fieldByName(t, template, "血型")

	tests := []struct {
		name    string
		req     *CreateRecordRequest
		wantErr error
	}{
		{
			name: "必填字段缺失",
			req: &CreateRecordRequest{
				TemplateID: template.ID,
				Fields:     []ValueInput{{FieldID: name.ID, Value: strPtr("张三")}},
			},
			wantErr: &RequiredFieldError{},
		},
		{
			name: "必填字段提交空串",
			req: &CreateRecordRequest{
				TemplateID: template.ID,
				Fields: []ValueInput{
					{FieldID: name.ID, Value: strPtr("")},
					{FieldID: blood.ID, Value: strPtr("a")},
				},
			},
			wantErr: &RequiredFieldError{},
		},
		{
			name: "非法选项值",
			req: &CreateRecordRequest{
				TemplateID: template.ID,
				Fields: []ValueInput{
					{FieldID: name.ID, Value: strPtr("张三")},
					{FieldID: blood.ID, Value: strPtr("ab")},
				},
			},
			wantErr: &InvalidOptionError{},
		},
		{
			name: "字段不属于模板",
			req: &CreateRecordRequest{
				TemplateID: template.ID,
				Fields: []ValueInput{
					{FieldID: name.ID, Value: strPtr("张三")},
					{FieldID: blood.ID, Value: strPtr("a")},
					{FieldID: 9999, Value: strPtr("x")},
				},
			},
			wantErr: &ValidationError{},
		},
		{
			name:    "模板不存在",
			req:     &CreateRecordRequest{TemplateID: 9999, Fields: []ValueInput{{FieldID: 1, Value: strPtr("x")}}},
			wantErr: &NotFoundError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(tt.req)
			require.Error(t, err)
			assert.True(t, errorIsType(err, tt.wantErr), "expected %T, got %T (%v)", tt.wantErr, err, err)
		})
	}

	// 所有失败的提交都不留下记录或值
	var recordCount, valueCount int64
	require.NoError(t, db.Model(&model.Record{}).Count(&recordCount).Error)
	require.NoError(t, db.Model(&model.Value{}).Count(&valueCount).Error)
	assert.Equal(t, int64(0), recordCount)
	assert.Equal(t, int64(0), valueCount)
}

// TestRecordUpdate 测试记录更新的全量覆盖语义
func TestRecordUpdate(t *testing.T) {
	db := setupTestDB(t)
	templateSvc := newTemplateService(db)
	svc := newRecordService(db)
	template := seedPatientTemplate(t, templateSvc)

	name := fieldByName(t, template, "姓名")
	blood := fieldByName(t, template, "血型")
	symptoms := fieldByName(t, template, "症状")
	remark := fieldByName(t, template, "备注")

	create := func(t *testing.T) *model.Record {
		record, err := svc.Create(&CreateRecordRequest{
			TemplateID: template.ID,
			Fields: []ValueInput{
				{FieldID: name.ID, Value: strPtr("张三")},
				{FieldID: blood.ID, Value: strPtr("a")},
				{FieldID: symptoms.ID, Values: []string{"fever"}},
				{FieldID: remark.ID, Value: strPtr("初诊")},
			},
		})
		require.NoError(t, err)
		return record
	}

	t.Run("原地更新并替换多选", func(t *testing.T) {
		record := create(t)
		updated, err := svc.Update(record.ID, &UpdateRecordRequest{
			Fields: []ValueInput{
				{FieldID: name.ID, Value: strPtr("张三丰")},
				{FieldID: blood.ID, Value: strPtr("o")},
				{FieldID: symptoms.ID, Values: []string{"cough", "headache"}},
				{FieldID: remark.ID, Value: strPtr("复诊")},
			},
		})
		require.NoError(t, err)
		require.Len(t, updated.Values, 4)

		byField := valuesByField(updated)
		assert.Equal(t, "张三丰", *byField[name.ID].Value)
		assert.Equal(t, blood.Options[2].ID, *byField[blood.ID].OptionID)
		require.Len(t, byField[symptoms.ID].MultipleSelections, 2)
		assert.Equal(t, symptoms.Options[1].ID, byField[symptoms.ID].MultipleSelections[0].OptionID)
		assert.Equal(t, symptoms.Options[2].ID, byField[symptoms.ID].MultipleSelections[1].OptionID)
	})

	t.Run("提交中缺席的既有值被删除", func(t *testing.T) {
		record := create(t)
		updated, err := svc.Update(record.ID, &UpdateRecordRequest{
			Fields: []ValueInput{
				{FieldID: name.ID, Value: strPtr("张三")},
				{FieldID: blood.ID, Value: strPtr("a")},
			},
		})
		require.NoError(t, err)
		assert.Len(t, updated.Values, 2)

		// 多选行必须随值一并清理
		var orphans int64
		require.NoError(t, db.Model(&model.MultipleSelection{}).
			Joins("JOIN `values` ON `values`.id = multiple_selections.value_id").
			Where("`values`.record_id = ?", record.ID).
			Count(&orphans).Error)
		assert.Equal(t, int64(0), orphans)
	})

	t.Run("提交空值等同于缺席", func(t *testing.T) {
		record := create(t)
		updated, err := svc.Update(record.ID, &UpdateRecordRequest{
			Fields: []ValueInput{
				{FieldID: name.ID, Value: strPtr("张三")},
				{FieldID: blood.ID, Value: strPtr("a")},
				{FieldID: remark.ID, Value: strPtr("")},
			},
		})
		require.NoError(t, err)
		byField := valuesByField(updated)
		assert.NotContains(t, byField, remark.ID)
	})

	t.Run("更新幂等", func(t *testing.T) {
		record := create(t)
		req := &UpdateRecordRequest{
			Fields: []ValueInput{
				{FieldID: name.ID, Value: strPtr("张三")},
				{FieldID: blood.ID, Value: strPtr("b")},
			},
		}
		first, err := svc.Update(record.ID, req)
		require.NoError(t, err)
		second, err := svc.Update(record.ID, req)
		require.NoError(t, err)

		assert.Equal(t, len(first.Values), len(second.Values))
		f, s := valuesByField(first), valuesByField(second)
		for fieldID, v := range f {
			assert.Equal(t, *v.Value, *s[fieldID].Value)
		}
	})

	t.Run("必填缺失时整体失败且原值保留", func(t *testing.T) {
		record := create(t)
		_, err := svc.Update(record.ID, &UpdateRecordRequest{
			Fields: []ValueInput{{FieldID: remark.ID, Value: strPtr("只改备注")}},
		})
		var rf *RequiredFieldError
		require.ErrorAs(t, err, &rf)

		got, err := svc.Get(record.ID)
		require.NoError(t, err)
		byField := valuesByField(got)
		assert.Equal(t, "张三", *byField[name.ID].Value)
		assert.Equal(t, "初诊", *byField[remark.ID].Value)
	})
}

// TestRecordDelete 测试记录删除的级联清理
func TestRecordDelete(t *testing.T) {
	db := setupTestDB(t)
	templateSvc := newTemplateService(db)
	svc := newRecordService(db)
	template := seedPatientTemplate(t, templateSvc)

	name := fieldByName(t, template, "姓名")
	blood := fieldByName(t, template, "血型")
	symptoms := fieldByName(t, template, "症状")

	record, err := svc.Create(&CreateRecordRequest{
		TemplateID: template.ID,
		Fields: []ValueInput{
			{FieldID: name.ID, Value: strPtr("张三")},
			{FieldID: blood.ID, Value: strPtr("a")},
			{FieldID: symptoms.ID, Values: []string{"fever", "cough"}},
		},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(record.ID))

	_, err = svc.Get(record.ID)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)

	var valueCount, selectionCount int64
	require.NoError(t, db.Model(&model.Value{}).Count(&valueCount).Error)
	require.NoError(t, db.Model(&model.MultipleSelection{}).Count(&selectionCount).Error)
	assert.Equal(t, int64(0), valueCount)
	assert.Equal(t, int64(0), selectionCount)

	// 模板不受影响
	_, err = templateSvc.Get(template.ID)
	require.NoError(t, err)
}

// TestRecordList 测试记录列表过滤
func TestRecordList(t *testing.T) {
	db := setupTestDB(t)
	templateSvc := newTemplateService(db)
	svc := newRecordService(db)

	t1 := seedPatientTemplate(t, templateSvc)
	t2 := seedPatientTemplate(t, templateSvc)

	for _, tpl := range []*model.Template{t1, t2} {
		name := fieldByName(t, tpl, "姓名")
		blood := fieldByName(t, tpl, "血型")
		_, err := svc.Create(&CreateRecordRequest{
			TemplateID: tpl.ID,
			Fields: []ValueInput{
				{FieldID: name.ID, Value: strPtr("张三")},
				{FieldID: blood.ID, Value: strPtr("a")},
			},
		})
		require.NoError(t, err)
	}

	all, err := svc.List(0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := svc.List(t1.ID)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, t1.ID, filtered[0].TemplateID)
}

func valuesByField(record *model.Record) map[uint]*model.Value {
	byField := make(map[uint]*model.Value, len(record.Values))
	for i := range record.Values {
		byField[record.Values[i].FieldID] = &record.Values[i]
	}
	return byField
}
