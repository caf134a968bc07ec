package merge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	apperrors "github.com/agbru/pdfbasics/internal/errors"
	"github.com/agbru/pdfbasics/internal/pdfa"
)

var disableConfigDir sync.Once

// Info dictionary keys pdfcpu rewrites on every write.
const (
	infoProducer     = "Producer"
	infoCreationDate = "CreationDate"
	infoModDate      = "ModDate"
)

// Producer is the /Producer value pdfcpu records in every document it writes.
func Producer() string {
	return "pdfcpu " + model.VersionStr
}

// PDFCPUEngine implements Engine with pdfcpu.
type PDFCPUEngine struct {
	conf *model.Configuration
}

// NewPDFCPUEngine returns an engine using relaxed validation. pdfcpu's
// per-user configuration directory is never created.
func NewPDFCPUEngine() *PDFCPUEngine {
	disableConfigDir.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFCPUEngine{conf: conf}
}

// Merge implements Engine.
func (e *PDFCPUEngine) Merge(ctx context.Context, req Request, w io.Writer) error {
	if len(req.Sources) == 0 {
		return apperrors.ErrNoSources
	}

	merged := req.Sources[0]
	if len(req.Sources) > 1 {
		var buf bytes.Buffer
		if err := api.MergeRaw(req.Sources, &buf, false, e.conf); err != nil {
			return fmt.Errorf("concatenating %d documents: %w", len(req.Sources), err)
		}
		merged = bytes.NewReader(buf.Bytes())
	} else if _, err := merged.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	stamp := pdfa.Stamp{Producer: Producer(), Date: req.Date}
	if stamp.Date.IsZero() {
		stamp.Date = time.Now()
	}
	if y := stamp.Date.Year(); y < 1000 || y > 9999 {
		return fmt.Errorf("document date %v is outside the range of PDF dates", stamp.Date)
	}
	packet, err := pdfa.Build(req.Info, stamp)
	if err != nil {
		return fmt.Errorf("building xmp packet: %w", err)
	}

	pctx, err := api.ReadContext(merged, e.conf)
	if err != nil {
		return fmt.Errorf("reading merged document: %w", err)
	}
	if err := api.ValidateContext(pctx); err != nil {
		return fmt.Errorf("validating merged document: %w", err)
	}
	if err := setInfo(pctx, req.Info, stamp); err != nil {
		return err
	}
	if err := setXMP(pctx, packet); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var out bytes.Buffer
	if err := api.WriteContext(pctx, &out); err != nil {
		return fmt.Errorf("writing merged document: %w", err)
	}
	if err := restoreInfoStamp(pctx, out.Bytes(), stamp); err != nil {
		return err
	}
	_, err = w.Write(out.Bytes())
	return err
}

// setInfo replaces the document-information dictionary with a fresh one
// holding the metadata triple and stamp.
func setInfo(pctx *model.Context, meta pdfa.Metadata, stamp pdfa.Stamp) error {
	d := types.NewDict()
	for key, value := range meta.InfoEntries() {
		d.Insert(key, encodeText(value))
	}
	date := types.DateString(stamp.Date)
	d.Insert(infoProducer, encodeText(stamp.Producer))
	d.InsertString(infoCreationDate, date)
	d.InsertString(infoModDate, date)

	ir, err := pctx.IndRefForNewObject(d)
	if err != nil {
		return fmt.Errorf("adding info dictionary: %w", err)
	}
	pctx.Info = ir
	return nil
}

// restoreInfoStamp undoes the wall-clock dates pdfcpu stamps into the Info
// dictionary while writing, so that out carries the dates of stamp again.
// PDF dates have a fixed width, which keeps every xref offset valid. The
// producer cannot be rewritten in place; it must already match.
func restoreInfoStamp(pctx *model.Context, out []byte, stamp pdfa.Stamp) error {
	d, err := pctx.DereferenceDict(*pctx.Info)
	if err != nil || d == nil {
		return fmt.Errorf("reading written info dictionary: %v", err)
	}
	if p := d.StringEntry(infoProducer); p == nil || *p != stamp.Producer {
		return fmt.Errorf("info /Producer was written as %v, want %q", d[infoProducer], stamp.Producer)
	}

	obj, err := infoObject(pctx, out)
	if err != nil {
		return err
	}

	want := types.StringLiteral(types.DateString(stamp.Date)).String()
	for _, key := range []string{infoCreationDate, infoModDate} {
		written := d.StringEntry(key)
		if written == nil {
			return fmt.Errorf("info /%s missing after write", key)
		}
		old := []byte("/" + key + types.StringLiteral(*written).String())
		i := bytes.Index(obj, old)
		if i < 0 || len(*written) != len(want)-2 {
			return fmt.Errorf("cannot restore info /%s %q", key, *written)
		}
		copy(obj[i+len(key)+1:], want)
		d.Update(key, types.StringLiteral(want[1:len(want)-1]))
	}
	return nil
}

// infoObject returns the slice of out holding the Info dictionary object,
// located through pdfcpu's write offsets.
func infoObject(pctx *model.Context, out []byte) ([]byte, error) {
	nr := pctx.Info.ObjectNumber.Value()
	header := []byte(fmt.Sprintf("%d %d obj", nr, pctx.Info.GenerationNumber.Value()))

	off, ok := pctx.Write.Table[nr]
	if !ok || off < 0 || off >= int64(len(out)) || !bytes.HasPrefix(out[off:], header) {
		i := bytes.Index(out, append([]byte(pctx.Write.Eol), header...))
		if i < 0 {
			return nil, fmt.Errorf("info dictionary object %d not found in output", nr)
		}
		off = int64(i + len(pctx.Write.Eol))
	}
	obj := out[off:]
	if end := bytes.Index(obj, []byte("endobj")); end >= 0 {
		obj = obj[:end]
	}
	return obj, nil
}

// setXMP attaches packet to the catalog as an unfiltered XML metadata stream.
func setXMP(pctx *model.Context, packet []byte) error {
	if len(packet) == 0 {
		return nil
	}
	root, err := pctx.Catalog()
	if err != nil {
		return fmt.Errorf("locating catalog: %w", err)
	}

	sd := types.NewStreamDict(types.NewDict(), 0, nil, nil, nil)
	sd.InsertName("Type", "Metadata")
	sd.InsertName("Subtype", "XML")
	sd.Content = packet
	if err := sd.Encode(); err != nil {
		return fmt.Errorf("encoding metadata stream: %w", err)
	}

	ir, err := pctx.IndRefForNewObject(sd)
	if err != nil {
		return fmt.Errorf("adding metadata stream: %w", err)
	}
	root.Update("Metadata", *ir)
	return nil
}

// Inspect implements Engine.
func (e *PDFCPUEngine) Inspect(ctx context.Context, rs io.ReadSeeker) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pctx, err := api.ReadContext(rs, e.conf)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	if err := api.ValidateContext(pctx); err != nil {
		return nil, fmt.Errorf("validating document: %w", err)
	}

	dims, err := pctx.PageDims()
	if err != nil {
		return nil, fmt.Errorf("reading page dimensions: %w", err)
	}
	report := &Report{Pages: pctx.PageCount, PageWidths: make([]float64, len(dims))}
	for i, d := range dims {
		report.PageWidths[i] = d.Width
	}

	if report.Info, err = readInfo(pctx); err != nil {
		return nil, err
	}
	if err := readInfoStamp(pctx, report); err != nil {
		return nil, err
	}

	packet, err := readXMP(pctx)
	switch {
	case errors.Is(err, errNoMetadata):
	case err != nil:
		report.XMPError = err
	default:
		report.XMP, report.XMPError = pdfa.Parse(packet)
	}
	return report, nil
}

var errNoMetadata = errors.New("no catalog metadata stream")

func readInfo(pctx *model.Context) (pdfa.Metadata, error) {
	var meta pdfa.Metadata
	if pctx.Info == nil {
		return meta, nil
	}
	d, err := pctx.DereferenceDict(*pctx.Info)
	if err != nil || d == nil {
		return meta, err
	}
	for key, dst := range map[string]*string{
		pdfa.InfoTitle:   &meta.Title,
		pdfa.InfoCreator: &meta.Creator,
		pdfa.InfoSubject: &meta.Subject,
	} {
		if *dst, err = infoText(pctx, d, key); err != nil {
			return meta, err
		}
	}
	return meta, nil
}

func readInfoStamp(pctx *model.Context, r *Report) error {
	if pctx.Info == nil {
		return nil
	}
	d, err := pctx.DereferenceDict(*pctx.Info)
	if err != nil || d == nil {
		return err
	}
	if r.Producer, err = infoText(pctx, d, infoProducer); err != nil {
		return err
	}
	for key, dst := range map[string]*time.Time{
		infoCreationDate: &r.Created,
		infoModDate:      &r.Modified,
	} {
		s, err := infoText(pctx, d, key)
		if err != nil {
			return err
		}
		if s == "" {
			continue
		}
		t, ok := types.DateTime(s, true)
		if !ok {
			return fmt.Errorf("info /%s %q is not a PDF date", key, s)
		}
		*dst = t
	}
	return nil
}

func infoText(pctx *model.Context, d types.Dict, key string) (string, error) {
	o, err := pctx.Dereference(d[key])
	if err != nil {
		return "", fmt.Errorf("reading info /%s: %w", key, err)
	}
	s, err := decodeText(o)
	if err != nil {
		return "", fmt.Errorf("decoding info /%s: %w", key, err)
	}
	return s, nil
}

func readXMP(pctx *model.Context) ([]byte, error) {
	root, err := pctx.Catalog()
	if err != nil {
		return nil, err
	}
	ref, found := root.Find("Metadata")
	if !found {
		return nil, errNoMetadata
	}
	o, err := pctx.Dereference(ref)
	if err != nil {
		return nil, err
	}
	sd, ok := o.(types.StreamDict)
	if !ok {
		return nil, fmt.Errorf("catalog /Metadata is %T, not a stream", o)
	}
	if len(sd.Content) == 0 {
		if err := sd.Decode(); err != nil {
			return nil, fmt.Errorf("decoding metadata stream: %w", err)
		}
	}
	return sd.Content, nil
}
