// pattern: Functional Core

// Package content turns a tool address into something a terminal can show.
package content

import (
	"bufio"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is the readable text of a loaded address.
type Document struct {
	Address string
	Title   string
	// Lines are logical paragraphs, unwrapped.
	Lines []string
}

var skipped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Svg:      true,
	atom.Template: true,
	atom.Iframe:   true,
}

var blocks = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Li: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Tr: true, atom.Table: true, atom.Ul: true, atom.Ol: true, atom.Pre: true,
	atom.Section: true, atom.Article: true, atom.Header: true, atom.Footer: true,
	atom.Main: true, atom.Nav: true, atom.Blockquote: true, atom.Hr: true,
	atom.Dt: true, atom.Dd: true, atom.Form: true, atom.Button: true,
}

// ParseHTML extracts the title and paragraph text from an HTML stream.
func ParseHTML(r io.Reader) (*Document, error) {
	doc := &Document{}
	z := html.NewTokenizer(r)

	var (
		line    strings.Builder
		skip    int
		inTitle bool
		title   strings.Builder
	)
	flush := func() {
		if s := collapse(line.String()); s != "" {
			doc.Lines = append(doc.Lines, s)
		}
		line.Reset()
	}

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			flush()
			doc.Title = collapse(title.String())
			if err := z.Err(); err != io.EOF {
				return doc, err
			}
			return doc, nil

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			a := atom.Lookup(name)
			switch {
			case a == atom.Title:
				inTitle = true
				continue
			case a == atom.Body:
				// An unclosed skipped element in the head must not hide the body.
				skip = 0
			case skipped[a]:
				if tt == html.StartTagToken {
					skip++
				}
				continue
			}
			if blocks[a] {
				flush()
			}
			switch a {
			case atom.Li:
				line.WriteString("• ")
			case atom.Hr:
				doc.Lines = append(doc.Lines, "――――")
			case atom.Img:
				if !hasAttr || skip > 0 {
					break
				}
				if alt := attr(z, "alt"); alt != "" {
					line.WriteString("[" + alt + "] ")
				}
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if a == atom.Title {
				inTitle = false
				continue
			}
			if skipped[a] {
				if skip > 0 {
					skip--
				}
				continue
			}
			if blocks[a] {
				flush()
			}

		case html.TextToken:
			text := string(z.Text())
			switch {
			case inTitle:
				title.WriteString(text)
			case skip == 0:
				line.WriteString(text)
				line.WriteByte(' ')
			}
		}
	}
}

// ParseText splits plain text into lines, dropping blank ones.
func ParseText(r io.Reader) (*Document, error) {
	doc := &Document{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if s := strings.TrimRight(sc.Text(), " \t\r"); strings.TrimSpace(s) != "" {
			doc.Lines = append(doc.Lines, s)
		}
	}
	return doc, sc.Err()
}

func attr(z *html.Tokenizer, key string) string {
	for {
		k, v, more := z.TagAttr()
		if string(k) == key {
			return string(v)
		}
		if !more {
			return ""
		}
	}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Text joins the document's lines.
func (d *Document) Text() string {
	return strings.Join(d.Lines, "\n")
}
