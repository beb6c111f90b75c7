package vanilla

// ChromeClass is a semantic CSS class applied to the page chrome.
type ChromeClass string

const (
	ClassForm       ChromeClass = "formstate-form"
	ClassControl    ChromeClass = "form-control"
	ClassFieldArray ChromeClass = "formstate-array"
	ClassActions    ChromeClass = "formstate-actions"
	ClassError      ChromeClass = "error"
	ClassState      ChromeClass = "formstate-state"
	ClassNotice     ChromeClass = "formstate-notice"
)

func chromeClasses() map[string]string {
	return map[string]string{
		"form":    string(ClassForm),
		"control": string(ClassControl),
		"array":   string(ClassFieldArray),
		"actions": string(ClassActions),
		"error":   string(ClassError),
		"state":   string(ClassState),
		"notice":  string(ClassNotice),
	}
}
