package i18n

import "strings"

// Translator retrieves localized messages for issue codes.
// data provides optional values embedded in the message (for example,
// "method" or "kind"); placeholders are written as {name}.
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	var msg string
	switch t.lang {
	case "ja":
		switch code {
		case "rejected":
			msg = "変更が検証で拒否されました"
		case "not_container":
			msg = "{path} はコンテナではありません"
		case "unknown_method":
			msg = "{kind} にメソッド {method} はありません"
		case "unknown_op":
			msg = "未知の操作 {op} です"
		case "invalid_value":
			msg = "値が不正です"
		case "parse_error":
			msg = "解析エラー"
		}
	default: // "en"
		switch code {
		case "rejected":
			msg = "change rejected by validation"
		case "not_container":
			msg = "{path} is not a container"
		case "unknown_method":
			msg = "{kind} has no method {method}"
		case "unknown_op":
			msg = "unknown operation {op}"
		case "invalid_value":
			msg = "invalid value"
		case "parse_error":
			msg = "parse error"
		}
	}
	if msg == "" {
		return code
	}
	return expand(msg, data)
}

func expand(msg string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, 2*len(data))
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
