package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/fahroediin/PDF-Analyzer/constants"
	"github.com/fahroediin/PDF-Analyzer/internal/common"
	"github.com/fahroediin/PDF-Analyzer/internal/core/fields"
	"github.com/fahroediin/PDF-Analyzer/internal/core/lines"
)

type fakeDoc struct {
	scanned   bool
	text      lines.PageLines
	pages     []Page
	renderErr error
	closed    atomic.Bool
}

func (d *fakeDoc) Pages() int {
	if d.scanned {
		return len(d.pages)
	}
	return len(d.text)
}
func (d *fakeDoc) IsScanned() bool { return d.scanned }
func (d *fakeDoc) Lines(context.Context) (lines.PageLines, error) {
	return d.text, nil
}
func (d *fakeDoc) RenderAll(context.Context) ([]Page, error) { return d.pages, d.renderErr }
func (d *fakeDoc) Close() error {
	d.closed.Store(true)
	return nil
}

type fakeOpener struct {
	doc *fakeDoc
	err error
}

func (o fakeOpener) Open(context.Context, string) (Document, error) {
	if o.err != nil {
		return nil, o.err
	}
	return o.doc, nil
}

type fakeRecognizer struct {
	name    string
	byPage  map[int][]string
	pageErr map[int]error
}

func (r *fakeRecognizer) Name() string { return r.name }
func (r *fakeRecognizer) Recognize(_ context.Context, p Page) ([]string, error) {
	if err := r.pageErr[p.Index]; err != nil {
		return nil, err
	}
	return r.byPage[p.Index], nil
}
func (r *fakeRecognizer) Close() error { return nil }

func scannedPages(n int) []Page {
	out := make([]Page, n)
	for i := range out {
		out[i] = Page{Index: i, Path: fmt.Sprintf("page-%d.png", i)}
	}
	return out
}

func TestProcessScannedKTP(t *testing.T) {
	doc := &fakeDoc{scanned: true, pages: scannedPages(1)}
	a := &fakeRecognizer{name: "a", byPage: map[int][]string{
		0: {"NIK\n1234567890123456\nNama\nBUDI\n~"},
	}}
	b := &fakeRecognizer{name: "b", byPage: map[int][]string{
		0: {"nik", "Agama", "ISLAM"},
	}}
	p := New(fakeOpener{doc: doc}, a, b, nil)

	res, err := p.Process(context.Background(), Request{Path: "/tmp/ktp.pdf", DocType: "ktp"})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.SourceKind != constants.SourceScanned || res.DocumentType != "KTP" || res.DocumentName != "ktp.pdf" {
		t.Errorf("envelope = %+v", res)
	}
	if res.MergedLines != 6 {
		t.Errorf("merged lines = %d, want 6", res.MergedLines)
	}
	for k, want := range map[string]string{"nik": "1234567890123456", "nama": "BUDI", "agama": "ISLAM"} {
		if got, _ := res.ParsedData.Get(k); got != want {
			t.Errorf("%s = %q, want %q", k, got, want)
		}
	}
	if !doc.closed.Load() {
		t.Errorf("document not closed")
	}
}

func TestProcessDigitalSkipsRecognizers(t *testing.T) {
	doc := &fakeDoc{text: lines.PageLines{
		0: {"NPWP : 01.234.567.8-901.000", "Nama : PT ABC"},
	}}
	failing := &fakeRecognizer{name: "x", pageErr: map[int]error{0: common.ErrRecognizer}}
	p := New(fakeOpener{doc: doc}, failing, failing, nil)

	res, err := p.Process(context.Background(), Request{Path: "npwp.pdf", DocType: "NPWP", DocumentName: "upload.pdf"})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.SourceKind != constants.SourceDigital || res.DocumentName != "upload.pdf" {
		t.Errorf("envelope = %+v", res)
	}
	want := []string{"NPWP : 01.234.567.8-901.000", "Nama : PT ABC"}
	if !reflect.DeepEqual(res.ExtractedLines, want) {
		t.Errorf("lines = %q", res.ExtractedLines)
	}
	if got, _ := res.ParsedData.Get("npwp_normalized"); got != "012345678901000" {
		t.Errorf("npwp_normalized = %q", got)
	}
}

func TestProcessLogsJobID(t *testing.T) {
	doc := &fakeDoc{text: lines.PageLines{0: {"Nama : PT ABC"}}}
	var buf bytes.Buffer
	p := New(fakeOpener{doc: doc}, nil, nil, slog.New(slog.NewJSONHandler(&buf, nil)))

	ctx := common.WithJobID(context.Background(), "0b7e1c43-3f7e-4f8e-9d44-0c4a0a3a2f10")
	if _, err := p.Process(ctx, Request{Path: "npwp.pdf", DocType: "NPWP"}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	var entry map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var e map[string]any
		if err := json.Unmarshal([]byte(line), &e); err == nil && e["msg"] == "document processed" {
			entry = e
		}
	}
	if entry == nil {
		t.Fatalf("no document processed entry in %s", buf.String())
	}
	if entry["job_id"] != "0b7e1c43-3f7e-4f8e-9d44-0c4a0a3a2f10" {
		t.Errorf("job_id = %v", entry["job_id"])
	}

	buf.Reset()
	if _, err := p.Process(context.Background(), Request{Path: "npwp.pdf", DocType: "NPWP"}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if strings.Contains(buf.String(), "job_id") {
		t.Errorf("job_id logged without a job: %s", buf.String())
	}
}

func TestProcessPageFailureIsTolerated(t *testing.T) {
	doc := &fakeDoc{scanned: true, pages: scannedPages(2)}
	a := &fakeRecognizer{name: "a",
		byPage:  map[int][]string{1: {"Email: a@b.co"}},
		pageErr: map[int]error{0: errors.New("blurry")},
	}
	p := New(fakeOpener{doc: doc}, a, nil, nil)

	res, err := p.Process(context.Background(), Request{Path: "x.png"})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.DocumentType != "NIB" {
		t.Errorf("default selector = %q", res.DocumentType)
	}
	if got, _ := res.ParsedData.Get("email"); got != "a@b.co" {
		t.Errorf("email = %q", got)
	}
}

func TestProcessRecognizerFailureFailsJoin(t *testing.T) {
	doc := &fakeDoc{scanned: true, pages: scannedPages(1)}
	a := &fakeRecognizer{name: "a", byPage: map[int][]string{0: {"NIK"}}}
	b := &fakeRecognizer{name: "b", pageErr: map[int]error{0: fmt.Errorf("exec: %w", common.ErrRecognizer)}}
	p := New(fakeOpener{doc: doc}, a, b, nil)

	_, err := p.Process(context.Background(), Request{Path: "x.pdf"})
	if !errors.Is(err, common.ErrRecognizer) {
		t.Fatalf("err = %v, want ErrRecognizer", err)
	}
	if !doc.closed.Load() {
		t.Errorf("document not closed after failure")
	}
}

func TestProcessOpenAndRenderErrors(t *testing.T) {
	p := New(fakeOpener{err: fmt.Errorf("pdfcpu: %w", common.ErrUnreadableDocument)}, nil, nil, nil)
	if _, err := p.Process(context.Background(), Request{Path: "bad.pdf"}); !errors.Is(err, common.ErrUnreadableDocument) {
		t.Errorf("open err = %v", err)
	}

	empty := New(fakeOpener{doc: &fakeDoc{scanned: true}}, nil, nil, nil)
	if _, err := empty.Process(context.Background(), Request{Path: "x.pdf"}); err == nil {
		t.Errorf("expected error when no pages render")
	}
}

func TestAssembleEmptyAndUnknown(t *testing.T) {
	res := Assemble(nil, nil, constants.KTP)
	if len(res.ParsedData.Keys()) != 14 || res.ParsedData.Found() != 0 {
		t.Errorf("empty KTP = %v keys, %d found", res.ParsedData.Keys(), res.ParsedData.Found())
	}
	if res.ExtractedLines == nil {
		t.Errorf("extracted lines should be an empty list, not nil")
	}

	dt, _ := constants.ParseDocType("PASSPORT")
	res = Assemble(lines.PageLines{0: {"hello world"}}, nil, dt)
	if got, _ := res.ParsedData.Get("content"); got != "hello world" {
		t.Errorf("content = %q", got)
	}
}

func TestAssembleFamilyCard(t *testing.T) {
	a := lines.PageLines{0: {
		"KARTU KELUARGA",
		"No. 3201234567890001",
		"Nama Kepala Keluarga : BUDI SANTOSO",
		"Alamat : JL MAWAR NO 1",
		"RT/RW : 001/002",
		"Desa/Kelurahan : SUKAMAJU",
		"Kecamatan : CIBINONG",
		"No Nama Lengkap NIK Jenis Kelamin",
		"1 BUDI SANTOSO 3201234567890002 LAKI-LAKI",
		"2 SITI AMINAH 3201234567890003 PEREMPUAN",
	}}
	b := lines.PageLines{0: {
		"NAMA KEPALA KELUARGA : BUDI SANTOSO",
		"KECAMATAN : CIBINONG",
	}}

	res := Assemble(a, b, constants.KK)
	if res.MergedLines != 10 {
		t.Errorf("merged lines = %d, want 10", res.MergedLines)
	}
	rec := res.ParsedData
	for field, want := range map[string]string{
		"no_kk":           "3201234567890001",
		"kepala_keluarga": "BUDI SANTOSO",
		"alamat":          "JL MAWAR NO 1",
		"rt_rw":           "001/002",
		"kel_desa":        "SUKAMAJU",
		"kecamatan":       "CIBINONG",
	} {
		if got, _ := rec.Get(field); got != want {
			t.Errorf("%s = %q, want %q", field, got, want)
		}
	}
	want := []fields.Member{
		{Name: "BUDI SANTOSO", NationalID: "3201234567890002"},
		{Name: "SITI AMINAH", NationalID: "3201234567890003"},
	}
	if got := rec.Members("anggota_keluarga"); !reflect.DeepEqual(got, want) {
		t.Errorf("members = %+v, want %+v", got, want)
	}
}

func TestAssembleDeterministic(t *testing.T) {
	a := lines.PageLines{1: {"Alamat : Jl. Mawar", "No. 1"}, 0: {"Nama : BUDI"}}
	b := lines.PageLines{0: {"nama budi", "Email: x@y.id"}}
	first, _ := json.Marshal(Assemble(a, b, constants.NIB))
	for i := 0; i < 5; i++ {
		again, _ := json.Marshal(Assemble(a, b, constants.NIB))
		if string(again) != string(first) {
			t.Fatalf("run %d differs:\n%s\n%s", i, again, first)
		}
	}
}

func TestFromRecognizedSanitizesEngineA(t *testing.T) {
	p := New(nil, nil, nil, nil)
	a := lines.PageLines{0: {"Email: a@b.co\n~"}}
	b := lines.PageLines{1: {"NIB : 1234567890123"}}

	res := p.FromRecognized("", "", a, b)
	if res.DocumentName != "unknown" || res.DocumentType != "NIB" || res.SourceKind != constants.SourceScanned {
		t.Errorf("envelope = %+v", res)
	}
	if res.Pages != 2 {
		t.Errorf("pages = %d, want 2", res.Pages)
	}
	if res.MergedLines != 2 {
		t.Errorf("merged lines = %d, want 2", res.MergedLines)
	}
	if got, _ := res.ParsedData.Get("email"); got != "a@b.co" {
		t.Errorf("email = %q", got)
	}
	if got, _ := res.ParsedData.Get("nib"); got != "1234567890123" {
		t.Errorf("nib = %q", got)
	}
}
