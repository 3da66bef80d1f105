package docsync

import (
	"sync"

	"github.com/huddle-dev/huddle/internal/domain"
)

// Mode describes one editor language mode: display name, file extension
// and the starter template seeded into an empty document.
type Mode struct {
	Lang      domain.Language
	Name      string
	Extension string
	Template  string
}

var (
	modesOnce sync.Once
	modes     map[domain.Language]Mode
)

// RegisterModes installs the built-in language modes. Invoked once at
// process start; repeated calls are no-ops.
func RegisterModes() {
	modesOnce.Do(func() {
		modes = make(map[domain.Language]Mode)
		for _, m := range builtinModes() {
			modes[m.Lang] = m
		}
	})
}

// LookupMode returns the mode for a language, if registered.
func LookupMode(lang domain.Language) (Mode, bool) {
	RegisterModes()
	m, ok := modes[lang]
	return m, ok
}

// Template returns the starter template for a language, or "".
func Template(lang domain.Language) string {
	m, _ := LookupMode(lang)
	return m.Template
}

func builtinModes() []Mode {
	return []Mode{
		{
			Lang:      domain.LangC,
			Name:      "C",
			Extension: ".c",
			Template:  "#include <stdio.h>\n\nint main() {\n    printf(\"Hello, World!\\n\");\n    return 0;\n}",
		},
		{
			Lang:      domain.LangCPP,
			Name:      "C++",
			Extension: ".cpp",
			Template:  "#include <iostream>\n\nint main() {\n    std::cout << \"Hello, World!\" << std::endl;\n    return 0;\n}",
		},
		{
			Lang:      domain.LangPython,
			Name:      "Python",
			Extension: ".py",
			Template:  "# Python starter code\n\ndef main():\n    print(\"Hello, World!\")\n\nif __name__ == \"__main__\":\n    main()",
		},
		{
			Lang:      domain.LangJavaScript,
			Name:      "JavaScript",
			Extension: ".js",
			Template:  "// JavaScript starter code\n\nfunction main() {\n    console.log(\"Hello, World!\");\n}\n\nmain();",
		},
		{
			Lang:      domain.LangJava,
			Name:      "Java",
			Extension: ".java",
			Template:  "public class Main {\n    public static void main(String[] args) {\n        System.out.println(\"Hello, World!\");\n    }\n}",
		},
	}
}
