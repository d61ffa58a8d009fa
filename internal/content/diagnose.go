// pattern: Functional Core

package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"strings"
)

// Diagnose lists the likely causes of a failed load, most specific first.
// The generic causes are added by the dashboard, so only what err proves is
// returned here.
func Diagnose(err error) []string {
	if err == nil {
		return nil
	}
	var causes []string

	var le *LoadError
	if errors.As(err, &le) {
		causes = append(causes, framingCauses(le.Header)...)
		switch {
		case le.Status == http.StatusUnauthorized, le.Status == http.StatusForbidden,
			le.Status == http.StatusUnavailableForLegalReasons:
			causes = append(causes, fmt.Sprintf("目标网站访问限制（HTTP %d）", le.Status))
		case le.Status == http.StatusTooManyRequests:
			causes = append(causes, "请求过于频繁（HTTP 429）")
		case le.Status >= 500:
			causes = append(causes, fmt.Sprintf("目标网站服务异常（HTTP %d）", le.Status))
		case le.Status >= 400:
			causes = append(causes, fmt.Sprintf("页面不可用（HTTP %d）", le.Status))
		}
	}

	var dnsErr *net.DNSError
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		causes = append(causes, "请求超时")
	case errors.As(err, &dnsErr):
		causes = append(causes, "无法解析域名 "+dnsErr.Name)
	case errors.As(err, &netErr) && netErr.Timeout():
		causes = append(causes, "请求超时")
	case netErr != nil:
		causes = append(causes, "网络连接问题："+netErr.Error())
	case errors.Is(err, fs.ErrNotExist):
		causes = append(causes, "本地文件不存在")
	}
	return causes
}

// FramingRefused reports whether the response headers forbid embedding the
// page in a frame on another origin.
func FramingRefused(h http.Header) bool {
	return len(framingCauses(h)) > 0
}

func framingCauses(h http.Header) []string {
	if h == nil {
		return nil
	}
	var causes []string
	if xfo := strings.TrimSpace(h.Get("X-Frame-Options")); xfo != "" {
		switch strings.ToUpper(xfo) {
		case "DENY", "SAMEORIGIN":
			causes = append(causes, fmt.Sprintf("目标网站不允许在iframe中显示（X-Frame-Options: %s）", strings.ToUpper(xfo)))
		}
	}
	for _, csp := range h.Values("Content-Security-Policy") {
		for _, directive := range strings.Split(csp, ";") {
			fields := strings.Fields(directive)
			if len(fields) == 0 || !strings.EqualFold(fields[0], "frame-ancestors") {
				continue
			}
			if !allowsAnyAncestor(fields[1:]) {
				causes = append(causes, "目标网站通过 CSP frame-ancestors 限制嵌入")
				return causes
			}
		}
	}
	return causes
}

func allowsAnyAncestor(sources []string) bool {
	for _, s := range sources {
		if s == "*" || strings.EqualFold(s, "https:") || strings.EqualFold(s, "http:") {
			return true
		}
	}
	return false
}
