package domain

// Language is a recognized execution target. Anything outside this set is
// rejected locally by the execution relay, without a network call.
type Language string

const (
	LangC          Language = "c"
	LangCPP        Language = "cpp"
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangJava       Language = "java"
)

// Languages lists the recognized execution targets in display order.
func Languages() []Language {
	return []Language{LangC, LangCPP, LangPython, LangJavaScript, LangJava}
}
