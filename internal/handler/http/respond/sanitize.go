package respond

import "regexp"

// maskRule replaces one kind of secret. Rules run in order, so the more
// specific key formats come first.
type maskRule struct {
	pattern *regexp.Regexp
	replace string
}

var maskRules = []maskRule{
	{regexp.MustCompile(`sk-ant-[a-zA-Z0-9-_]+`), "sk-ant-****"},
	// 既にマスク済みの文字列(*を含む)には一致しない
	{regexp.MustCompile(`sk-[a-zA-Z0-9]{10,}`), "sk-****"},
	// DSN / URI 内のパスワード (postgres://, mongodb://, mongodb+srv://)
	{regexp.MustCompile(`://([^:/\s]+):([^@\s]+)@`), "://$1:****@"},
	// Webhook URL はパスにトークンを含む
	{regexp.MustCompile(`hooks\.slack\.com/services/[^\s"']+`), "hooks.slack.com/services/****"},
	{regexp.MustCompile(`discord(?:app)?\.com/api/webhooks/[^\s"']+`), "discord.com/api/webhooks/****"},
}

// SanitizeError returns err's text with API keys, credentials in
// connection strings and webhook tokens masked.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, r := range maskRules {
		msg = r.pattern.ReplaceAllString(msg, r.replace)
	}
	return msg
}
