package convert

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

const corePropsPart = "docProps/core.xml"

// WriteDOCX writes doc as a Word document. The title gets the Title style and
// pages are separated by page breaks.
func WriteDOCX(w io.Writer, doc Document) error {
	rd, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("create docx: %w", err)
	}
	defer rd.Close()

	if doc.Title != "" {
		if _, err := rd.AddHeading(doc.Title, 0); err != nil {
			return fmt.Errorf("add title: %w", err)
		}
	}
	for i, page := range doc.Pages {
		if i > 0 {
			rd.AddPageBreak()
		}
		for _, para := range page.Paragraphs {
			rd.AddParagraph(para)
		}
	}

	if err := setCoreProperties(rd, doc.Title, time.Now().UTC()); err != nil {
		return err
	}
	if err := rd.Write(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

type coreProperties struct {
	XMLName  xml.Name `xml:"cp:coreProperties"`
	CP       string   `xml:"xmlns:cp,attr"`
	DC       string   `xml:"xmlns:dc,attr"`
	DCTerms  string   `xml:"xmlns:dcterms,attr"`
	XSI      string   `xml:"xmlns:xsi,attr"`
	Title    string   `xml:"dc:title,omitempty"`
	Creator  string   `xml:"dc:creator"`
	Created  w3cDate  `xml:"dcterms:created"`
	Modified w3cDate  `xml:"dcterms:modified"`
}

type w3cDate struct {
	Type  string `xml:"xsi:type,attr"`
	Value string `xml:",chardata"`
}

// setCoreProperties replaces the template's core properties part, which the
// library only exposes through its file map.
func setCoreProperties(rd *docx.RootDoc, title string, at time.Time) error {
	stamp := w3cDate{Type: "dcterms:W3CDTF", Value: at.Format(time.RFC3339)}
	body, err := xml.Marshal(coreProperties{
		CP:       "http://schemas.openxmlformats.org/package/2006/metadata/core-properties",
		DC:       "http://purl.org/dc/elements/1.1/",
		DCTerms:  "http://purl.org/dc/terms/",
		XSI:      "http://www.w3.org/2001/XMLSchema-instance",
		Title:    title,
		Creator:  "docforge",
		Created:  stamp,
		Modified: stamp,
	})
	if err != nil {
		return fmt.Errorf("encode core properties: %w", err)
	}
	rd.FileMap.Store(corePropsPart, append([]byte(xml.Header), body...))
	return nil
}
