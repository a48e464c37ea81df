package service

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/HadiHz88/medical-records-api/internal/model"
	"github.com/HadiHz88/medical-records-api/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testDBSeq uint64

// setupTestDB 创建一个独立的内存数据库并迁移全部表结构
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// 每个测试独立的共享内存库，避免连接池拿到不同的 :memory: 实例
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", atomic.AddUint64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&model.User{},
		&model.Template{},
		&model.Field{},
		&model.Option{},
		&model.Record{},
		&model.Value{},
		&model.MultipleSelection{},
		&model.Permission{},
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newTemplateService(db *gorm.DB) *TemplateService {
	return NewTemplateService(db, repository.NewTemplateRepository(db), repository.NewFieldRepository(db))
}

func newRecordService(db *gorm.DB) *RecordService {
	return NewRecordService(db, repository.NewRecordRepository(db))
}

func newAccessService(db *gorm.DB) *AccessService {
	return NewAccessService(db, repository.NewPermissionRepository(db), repository.NewUserRepository(db))
}

// seedPatientTemplate 创建一个典型的病历模板：
// 姓名(必填text) / 血型(必填select) / 症状(可选多选select) / 备注(可选text)
func seedPatientTemplate(t *testing.T, svc *TemplateService) *model.Template {
	t.Helper()

	template, err := svc.Create(&CreateTemplateRequest{
		Name: "门诊病历",
		Fields: []FieldInput{
			{FieldName: "姓名", FieldType: "text", IsRequired: true},
			{FieldName: "血型", FieldType: "select", IsRequired: true, Options: []OptionInput{
				{OptionName: "A型", OptionValue: "a"},
				{OptionName: "B型", OptionValue: "b"},
				{OptionName: "O型", OptionValue: "o"},
			}},
			{FieldName: "症状", FieldType: "select", IsMultiple: true, Options: []OptionInput{
				{OptionName: "发热", OptionValue: "fever"},
				{OptionName: "咳嗽", OptionValue: "cough"},
				{OptionName: "头痛", OptionValue: "headache"},
			}},
			{FieldName: "备注", FieldType: "text"},
		},
	})
	require.NoError(t, err)
	require.Len(t, template.Fields, 4)
	return template
}

// fieldByName 按名称查找模板字段
func fieldByName(t *testing.T, template *model.Template, name string) *model.Field {
	t.Helper()
	for i := range template.Fields {
		if template.Fields[i].FieldName == name {
			return &template.Fields[i]
		}
	}
	t.Fatalf("field %q not found in template %q", name, template.Name)
	return nil
}
