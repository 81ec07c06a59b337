package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FormatValidationError turns go-playground field errors into the Hebrew
// strings the client displays.
func FormatValidationError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, fieldError := range validationErrors {
			messages = append(messages, getFieldErrorMessage(fieldError))
		}
		return strings.Join(messages, "; ")
	}
	return err.Error()
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := getFieldName(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("יש למלא %s", field)
	case "email":
		return fmt.Sprintf("%s חייב להיות כתובת אימייל תקינה", field)
	case "min":
		if fe.Type().String() == "string" {
			return fmt.Sprintf("%s חייב להכיל לפחות %s תווים", field, fe.Param())
		}
		return fmt.Sprintf("%s חייב להיות לפחות %s", field, fe.Param())
	case "max":
		if fe.Type().String() == "string" {
			return fmt.Sprintf("%s יכול להכיל עד %s תווים", field, fe.Param())
		}
		return fmt.Sprintf("%s יכול להיות עד %s", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s חייב להכיל בדיוק %s תווים", field, fe.Param())
	case "uuid":
		return fmt.Sprintf("%s אינו מזהה תקין", field)
	default:
		return fmt.Sprintf("%s אינו תקין", field)
	}
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"Title":            "כותרת",
		"Description":      "תיאור",
		"Name":             "שם",
		"Phone":            "מספר טלפון",
		"Email":            "אימייל",
		"Password":         "סיסמה",
		"Code":             "קוד אימות",
		"FullName":         "שם מלא",
		"Reason":           "סיבת דחייה",
		"Body":             "תגובה",
		"EstimatedMinutes": "זמן משוער",
		"MainTopicID":      "נושא ראשי",
		"SubTopicID":       "תת נושא",
		"TargetTopicID":    "נושא יעד",
		"IDs":              "רשימת פריטים",
	}

	if name, ok := fieldNames[field]; ok {
		return name
	}
	return field
}
