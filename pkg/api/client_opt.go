package api

import (
	"net/http"
	"net/url"
)

type headerOpt struct {
	name  string
	value string
}

func (opt headerOpt) Do(_ defaultClient, req *http.Request) {
	req.Header.Set(opt.name, opt.value)
}

// Bot authorizes the request with a bot token.
func Bot(token string) Opt {
	return headerOpt{name: "Authorization", value: "Bot " + token}
}

// Bearer authorizes the request with an oauth2 access token.
func Bearer(token string) Opt {
	return headerOpt{name: "Authorization", value: "Bearer " + token}
}

// AuditLogReason is shown in the guild audit log for actions taken by a bot.
func AuditLogReason(reason string) Opt {
	return headerOpt{name: "X-Audit-Log-Reason", value: url.PathEscape(reason)}
}
