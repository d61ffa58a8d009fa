// pattern: Functional Core

// Package catalog holds the tools a panel selector can offer.
package catalog

import (
	"net/url"
	"slices"
	"strings"
)

// Entry is one selectable tool.
type Entry struct {
	Label   string `yaml:"label" json:"label"`
	Address string `yaml:"address" json:"address"`
}

// Well-known entry that every catalog must contain.
var ChatGLM = Entry{Label: "智谱清言", Address: "https://chatglm.cn/chat"}

// SandboxTokens is the capability set granted to external tools.
var SandboxTokens = []string{"allow-same-origin", "allow-scripts", "allow-popups", "allow-forms"}

// Defaults is the built-in catalog used when config lists no tools.
func Defaults() []Entry {
	return []Entry{
		{Label: "使用说明", Address: "guide.html"},
		{Label: "ChatGPT", Address: "https://chatgpt.com/"},
		{Label: "Claude", Address: "https://claude.ai/new"},
		{Label: "DeepSeek", Address: "https://chat.deepseek.com/"},
		{Label: "Kimi", Address: "https://kimi.moonshot.cn/"},
		{Label: "豆包", Address: "https://www.doubao.com/chat/"},
		{Label: "通义千问", Address: "https://tongyi.aliyun.com/qianwen/"},
		{Label: "文心一言", Address: "https://yiyan.baidu.com/"},
		{Label: "腾讯元宝", Address: "https://yuanbao.tencent.com/chat"},
	}
}

// Catalog is an ordered, append-only list of entries keyed by address.
type Catalog struct {
	entries []Entry
}

// New builds a catalog from entries, skipping blanks and duplicate addresses,
// then appends ChatGLM if it is missing.
func New(entries []Entry) *Catalog {
	c := &Catalog{}
	c.Merge(entries)
	c.EnsureEntry(ChatGLM)
	return c
}

// Entries returns a copy of the catalog in display order.
func (c *Catalog) Entries() []Entry {
	return slices.Clone(c.entries)
}

func (c *Catalog) Len() int { return len(c.entries) }

// Lookup finds the entry for address.
func (c *Catalog) Lookup(address string) (Entry, bool) {
	i := c.index(address)
	if i < 0 {
		return Entry{}, false
	}
	return c.entries[i], true
}

// EnsureEntry appends e unless an entry with the same address exists.
// It reports whether e was added.
func (c *Catalog) EnsureEntry(e Entry) bool {
	e.Label = strings.TrimSpace(e.Label)
	e.Address = strings.TrimSpace(e.Address)
	if e.Address == "" || c.index(e.Address) >= 0 {
		return false
	}
	if e.Label == "" {
		e.Label = e.Address
	}
	c.entries = append(c.entries, e)
	return true
}

// Merge appends every new entry and returns the ones that were added.
// Existing entries are never removed or relabelled.
func (c *Catalog) Merge(entries []Entry) []Entry {
	var added []Entry
	for _, e := range entries {
		if c.EnsureEntry(e) {
			added = append(added, c.entries[len(c.entries)-1])
		}
	}
	return added
}

func (c *Catalog) index(address string) int {
	return slices.IndexFunc(c.entries, func(e Entry) bool { return e.Address == address })
}

// IsExternal reports whether address has a URL scheme other than file.
// Relative paths and file URLs are local resources.
func IsExternal(address string) bool {
	u, err := url.Parse(strings.TrimSpace(address))
	if err != nil {
		return strings.HasPrefix(strings.ToLower(address), "http")
	}
	switch strings.ToLower(u.Scheme) {
	case "", "file":
		return false
	default:
		return true
	}
}

// SandboxPolicy returns the sandbox tokens for address: none for local
// resources, SandboxTokens for external ones.
func SandboxPolicy(address string) []string {
	if !IsExternal(address) {
		return nil
	}
	return slices.Clone(SandboxTokens)
}
