package locale

// Message keys for API responses.
const (
	MsgInvalidRequest     = "invalid_request"
	MsgHabitNotFound      = "habit_not_found"
	MsgMalformedImport    = "malformed_import"
	MsgOperationFailed    = "operation_failed"
	MsgInvalidDate        = "invalid_date"
	MsgInvalidStartDate   = "invalid_start_date"
	MsgInvalidEndDate     = "invalid_end_date"
	MsgInvalidMonth       = "invalid_month"
	MsgMissingEntryField  = "missing_entry_field"
	MsgSessionSaveFailed  = "session_save_failed"
	MsgPasswordRequired   = "password_required"
	MsgWrongPassword      = "wrong_password"
	MsgLoginRequired      = "login_required"
	MsgExportFailed       = "export_failed"
	MsgImportMissing      = "import_missing"
	MsgPersistenceWarning = "persistence_warning"
)

var messages = map[string][2]string{
	MsgInvalidRequest:     {"Invalid request parameters", "请求参数不合法"},
	MsgHabitNotFound:      {"Habit not found", "习惯不存在"},
	MsgMalformedImport:    {"The imported file is not a valid habit document", "导入文件格式不正确"},
	MsgOperationFailed:    {"Operation failed", "操作失败"},
	MsgInvalidDate:        {"Invalid date, expected YYYY-MM-DD", "无效的日期"},
	MsgInvalidStartDate:   {"Invalid start date", "无效的开始日期"},
	MsgInvalidEndDate:     {"Invalid end date", "无效的结束日期"},
	MsgInvalidMonth:       {"Invalid month, expected YYYY-MM", "无效的月份"},
	MsgMissingEntryField:  {"Either done or note is required", "缺少 done 或 note"},
	MsgSessionSaveFailed:  {"Failed to save session", "会话保存失败"},
	MsgPasswordRequired:   {"Password is required", "请输入密码"},
	MsgWrongPassword:      {"Wrong password", "密码错误"},
	MsgLoginRequired:      {"Please log in first", "请先登录"},
	MsgExportFailed:       {"Export failed", "导出失败"},
	MsgImportMissing:      {"No import payload found", "未找到导入内容"},
	MsgPersistenceWarning: {"Changes were not saved to storage, export a backup soon", "数据未能保存到存储，请及时导出备份"},
}

// Pick returns the text matching the request language, defaulting to Chinese.
func Pick(language, english, chinese string) string {
	if NormalizeLanguage(language) == LanguageEnglish {
		if english != "" {
			return english
		}
		return chinese
	}
	if chinese != "" {
		return chinese
	}
	return english
}

// Message translates a message key. Unknown keys are returned unchanged.
func Message(language, key string) string {
	text, ok := messages[key]
	if !ok {
		return key
	}
	return Pick(language, text[0], text[1])
}
