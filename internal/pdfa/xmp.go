package pdfa

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"time"
)

// PDF/A-1b identification values written into every packet.
const (
	Part        = 1
	Conformance = "B"
)

// XMPDateLayout is the ISO 8601 layout used for xmp date properties.
const XMPDateLayout = "2006-01-02T15:04:05-07:00"

const (
	nsRDF    = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	nsPDFAID = "http://www.aiim.org/pdfa/ns/id/"
	nsDC     = "http://purl.org/dc/elements/1.1/"
	nsXMP    = "http://ns.adobe.com/xap/1.0/"
	nsPDF    = "http://ns.adobe.com/pdf/1.3/"
)

// Stamp identifies the program that wrote a document and the instant it did
// so. The same stamp feeds the Info dictionary's /Producer, /CreationDate and
// /ModDate entries and their XMP counterparts.
type Stamp struct {
	Producer string
	Date     time.Time
}

// ErrNoPDFAIdentification is returned by Parse when the packet lacks the
// pdfaid schema.
var ErrNoPDFAIdentification = errors.New("xmp packet has no PDF/A identification")

// Packet is the decoded form of an XMP metadata stream.
type Packet struct {
	Part         int
	Conformance  string
	Metadata     Metadata
	CreatorTool  string
	Producer     string
	CreateDate   time.Time
	ModifyDate   time.Time
	MetadataDate time.Time
}

// IsPDFA1B reports whether the packet claims PDF/A-1b conformance.
func (p *Packet) IsPDFA1B() bool {
	return p.Part == Part && strings.EqualFold(p.Conformance, Conformance)
}

// Build serializes meta into an XMP packet claiming PDF/A-1b. The creator
// doubles as xmp:CreatorTool, mirroring the Info dictionary's /Creator.
//
// Parameters:
//   - meta: The metadata triple. It must pass Validate.
//   - stamp: The producer and the instant used for every xmp date.
//
// Returns:
//   - []byte: The UTF-8 packet, wrapped in xpacket processing instructions.
//   - error: An error if meta or the producer cannot be represented in XML.
func Build(meta Metadata, stamp Stamp) ([]byte, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	if err := validateText("producer", stamp.Producer); err != nil {
		return nil, err
	}
	date := stamp.Date.Format(XMPDateLayout)

	var b bytes.Buffer
	b.WriteString("<?xpacket begin=\"\ufeff\" id=\"W5M0MpCehiHzreSzNTczkc9d\"?>\n")
	b.WriteString("<x:xmpmeta xmlns:x=\"adobe:ns:meta/\">\n")
	b.WriteString(" <rdf:RDF xmlns:rdf=\"" + nsRDF + "\">\n")

	b.WriteString("  <rdf:Description rdf:about=\"\" xmlns:pdfaid=\"" + nsPDFAID + "\">\n")
	fmt.Fprintf(&b, "   <pdfaid:part>%d</pdfaid:part>\n", Part)
	fmt.Fprintf(&b, "   <pdfaid:conformance>%s</pdfaid:conformance>\n", Conformance)
	b.WriteString("  </rdf:Description>\n")

	b.WriteString("  <rdf:Description rdf:about=\"\" xmlns:dc=\"" + nsDC + "\">\n")
	b.WriteString("   <dc:format>application/pdf</dc:format>\n")
	writeLangAlt(&b, "dc:title", meta.Title)
	b.WriteString("   <dc:creator><rdf:Seq><rdf:li>")
	if err := escape(&b, meta.Creator); err != nil {
		return nil, err
	}
	b.WriteString("</rdf:li></rdf:Seq></dc:creator>\n")
	writeLangAlt(&b, "dc:description", meta.Subject)
	b.WriteString("  </rdf:Description>\n")

	b.WriteString("  <rdf:Description rdf:about=\"\" xmlns:xmp=\"" + nsXMP + "\">\n")
	b.WriteString("   <xmp:CreatorTool>")
	if err := escape(&b, meta.Creator); err != nil {
		return nil, err
	}
	b.WriteString("</xmp:CreatorTool>\n")
	fmt.Fprintf(&b, "   <xmp:CreateDate>%s</xmp:CreateDate>\n", date)
	fmt.Fprintf(&b, "   <xmp:ModifyDate>%s</xmp:ModifyDate>\n", date)
	fmt.Fprintf(&b, "   <xmp:MetadataDate>%s</xmp:MetadataDate>\n", date)
	b.WriteString("  </rdf:Description>\n")

	b.WriteString("  <rdf:Description rdf:about=\"\" xmlns:pdf=\"" + nsPDF + "\">\n")
	b.WriteString("   <pdf:Producer>")
	if err := escape(&b, stamp.Producer); err != nil {
		return nil, err
	}
	b.WriteString("</pdf:Producer>\n")
	b.WriteString("  </rdf:Description>\n")

	b.WriteString(" </rdf:RDF>\n")
	b.WriteString("</x:xmpmeta>\n")
	b.WriteString("<?xpacket end=\"w\"?>")
	return b.Bytes(), nil
}

func writeLangAlt(b *bytes.Buffer, elem, value string) {
	b.WriteString("   <" + elem + "><rdf:Alt><rdf:li xml:lang=\"x-default\">")
	// Validate has already rejected anything xml.EscapeText could fail on.
	_ = xml.EscapeText(b, []byte(value))
	b.WriteString("</rdf:li></rdf:Alt></" + elem + ">\n")
}

func escape(b *bytes.Buffer, value string) error {
	return xml.EscapeText(b, []byte(value))
}

type xmpMeta struct {
	XMLName xml.Name `xml:"adobe:ns:meta/ xmpmeta"`
	RDF     struct {
		Descriptions []rdfDescription `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# Description"`
	} `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# RDF"`
}

type rdfDescription struct {
	Part         string  `xml:"http://www.aiim.org/pdfa/ns/id/ part"`
	Conformance  string  `xml:"http://www.aiim.org/pdfa/ns/id/ conformance"`
	Title        langAlt `xml:"http://purl.org/dc/elements/1.1/ title"`
	Description  langAlt `xml:"http://purl.org/dc/elements/1.1/ description"`
	Creator      rdfSeq  `xml:"http://purl.org/dc/elements/1.1/ creator"`
	CreatorTool  string  `xml:"http://ns.adobe.com/xap/1.0/ CreatorTool"`
	Producer     string  `xml:"http://ns.adobe.com/pdf/1.3/ Producer"`
	CreateDate   string  `xml:"http://ns.adobe.com/xap/1.0/ CreateDate"`
	ModifyDate   string  `xml:"http://ns.adobe.com/xap/1.0/ ModifyDate"`
	MetadataDate string  `xml:"http://ns.adobe.com/xap/1.0/ MetadataDate"`
}

type langAlt struct {
	Items []string `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# Alt>li"`
}

type rdfSeq struct {
	Items []string `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# Seq>li"`
}

func (l langAlt) first() string {
	if len(l.Items) == 0 {
		return ""
	}
	return l.Items[0]
}

func (s rdfSeq) joined() string {
	return strings.Join(s.Items, ", ")
}

// Parse decodes an XMP packet. Properties may be spread across any number of
// rdf:Description elements; later values do not override earlier ones.
func Parse(data []byte) (*Packet, error) {
	body, err := stripPacketWrapper(data)
	if err != nil {
		return nil, err
	}
	var doc xmpMeta
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decoding xmp packet: %w", err)
	}

	p := &Packet{}
	var part, title, subject, creator string
	var created, modified, metadataDate string
	for _, d := range doc.RDF.Descriptions {
		setOnce(&part, strings.TrimSpace(d.Part))
		setOnce(&p.Conformance, strings.TrimSpace(d.Conformance))
		setOnce(&title, d.Title.first())
		setOnce(&subject, d.Description.first())
		setOnce(&creator, d.Creator.joined())
		setOnce(&p.CreatorTool, d.CreatorTool)
		setOnce(&p.Producer, d.Producer)
		setOnce(&created, strings.TrimSpace(d.CreateDate))
		setOnce(&modified, strings.TrimSpace(d.ModifyDate))
		setOnce(&metadataDate, strings.TrimSpace(d.MetadataDate))
	}
	if part == "" {
		return nil, ErrNoPDFAIdentification
	}
	if _, err := fmt.Sscanf(part, "%d", &p.Part); err != nil {
		return nil, fmt.Errorf("invalid pdfaid:part %q", part)
	}
	p.Metadata = Metadata{Title: title, Creator: creator, Subject: subject}

	for _, d := range []struct {
		raw string
		dst *time.Time
	}{
		{created, &p.CreateDate},
		{modified, &p.ModifyDate},
		{metadataDate, &p.MetadataDate},
	} {
		if d.raw == "" {
			continue
		}
		t, err := time.Parse(XMPDateLayout, d.raw)
		if err != nil {
			return nil, fmt.Errorf("invalid xmp date %q: %w", d.raw, err)
		}
		*d.dst = t
	}
	return p, nil
}

func setOnce(dst *string, v string) {
	if *dst == "" && v != "" {
		*dst = v
	}
}

// stripPacketWrapper returns the xmpmeta element without the surrounding
// xpacket processing instructions.
func stripPacketWrapper(data []byte) ([]byte, error) {
	start := bytes.Index(data, []byte("<x:xmpmeta"))
	if start < 0 {
		start = bytes.Index(data, []byte("<xmpmeta"))
	}
	if start < 0 {
		return nil, errors.New("xmp packet has no xmpmeta element")
	}
	body := data[start:]
	if end := bytes.LastIndex(body, []byte("<?xpacket")); end >= 0 {
		body = body[:end]
	}
	return body, nil
}
