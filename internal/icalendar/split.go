package icalendar

import (
	"strings"

	"github.com/beevik/etree"
)

// Split isolates every calendar object in a server response. A WebDAV
// multistatus body yields one object per calendar-data element together
// with its href and etag. Anything else, including XML that fails to parse,
// is scanned for BEGIN:VCALENDAR ... END:VCALENDAR blocks.
func Split(text string) []Object {
	if strings.HasPrefix(strings.TrimSpace(text), "<") {
		objs, ok := splitMultistatus(text)
		if ok && (len(objs) > 0 || !strings.Contains(text, "BEGIN:VCALENDAR")) {
			return objs
		}
		if !strings.Contains(text, "BEGIN:") {
			return nil
		}
	}
	return splitBlocks(text)
}

func splitMultistatus(text string) ([]Object, bool) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(text); err != nil {
		return nil, false
	}
	root := doc.Root()
	if root == nil || !strings.EqualFold(root.Tag, "multistatus") {
		return nil, false
	}

	var objs []Object
	for _, resp := range getElementsIgnoreNS(root, "response") {
		var href string
		if el := findElementIgnoreNS(resp, "href"); el != nil {
			href = strings.TrimSpace(el.Text())
		}
		for _, propstat := range getElementsIgnoreNS(resp, "propstat") {
			prop := findElementIgnoreNS(propstat, "prop")
			if prop == nil {
				continue
			}
			data := findElementIgnoreNS(prop, "calendar-data")
			if data == nil || strings.TrimSpace(data.Text()) == "" {
				continue
			}
			var etag string
			if el := findElementIgnoreNS(prop, "getetag"); el != nil {
				etag = strings.TrimSpace(el.Text())
			}
			objs = append(objs, Object{Href: href, ETag: etag, Data: data.Text()})
		}
	}
	return objs, true
}

// splitBlocks cuts raw text into VCALENDAR blocks. Text with no envelope at
// all is returned as a single object so bare components still decode.
func splitBlocks(text string) []Object {
	var objs []Object
	var cur []string
	inside := false
	for _, line := range strings.Split(normalizeNewlines(text), "\n") {
		switch strings.ToUpper(strings.TrimSpace(line)) {
		case "BEGIN:VCALENDAR":
			inside = true
			cur = cur[:0]
			cur = append(cur, line)
			continue
		case "END:VCALENDAR":
			if inside {
				cur = append(cur, line)
				objs = append(objs, Object{Data: strings.Join(cur, "\n")})
				inside = false
			}
			continue
		}
		if inside {
			cur = append(cur, line)
		}
	}
	if len(objs) == 0 && strings.TrimSpace(text) != "" {
		return []Object{{Data: text}}
	}
	return objs
}

func getElementsIgnoreNS(parent *etree.Element, localName string) []*etree.Element {
	var elements []*etree.Element
	for _, child := range parent.ChildElements() {
		if strings.EqualFold(child.Tag, localName) {
			elements = append(elements, child)
		}
	}
	return elements
}

func findElementIgnoreNS(parent *etree.Element, localName string) *etree.Element {
	elements := getElementsIgnoreNS(parent, localName)
	if len(elements) > 0 {
		return elements[0]
	}
	return nil
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
