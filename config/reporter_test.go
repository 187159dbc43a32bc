package config

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestReport(t *testing.T) *Report {
	t.Helper()
	conf := ReporterConfig{Destination: filepath.Join(t.TempDir(), "report.zip")}
	r, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	return r
}

func readArchive(t *testing.T, name string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(name)
	if err != nil {
		t.Fatalf("unable to open report: %v", err)
	}
	defer zr.Close()

	files := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("unable to open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("unable to read %s: %v", f.Name, err)
		}
		files[f.Name] = string(data)
	}
	return files
}

func TestReport_Archive(t *testing.T) {
	r := newTestReport(t)

	src := t.TempDir()
	if err := os.MkdirAll(filepath.Join(src, "nested"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "colors.json"), []byte(`{"dark":"#000"}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "nested", "spacing.yaml"), []byte("s: 1rem\n"), 0644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "tokens.css")
	if err := os.WriteFile(out, []byte(":root {\n}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := r.StoreCopy("tokens", src); err != nil {
		t.Fatalf("StoreCopy() error: %v", err)
	}
	r.Store("output/tokens.css", out)
	r.StoreData("warnings.txt", []byte("spacing: missing\n"))
	r.Store("gone.log", filepath.Join(t.TempDir(), "absent.log"))

	name := r.Name()
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	files := readArchive(t, name)
	for name, want := range map[string]string{
		"tokens/colors.json":         `{"dark":"#000"}`,
		"tokens/nested/spacing.yaml": "s: 1rem\n",
		"output/tokens.css":          ":root {\n}\n",
		"warnings.txt":               "spacing: missing\n",
	} {
		if got, ok := files[name]; !ok {
			t.Errorf("report does not contain %s", name)
		} else if got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
	if _, ok := files["gone.log"]; ok {
		t.Error("absent file should be skipped")
	}

	manifest := files["MANIFEST"]
	for _, name := range []string{"gone.log", "output/tokens.css", "tokens", "warnings.txt"} {
		if !strings.Contains(manifest, "\t"+name+"\t") {
			t.Errorf("MANIFEST does not list %s:\n%s", name, manifest)
		}
	}
	if i, j := strings.Index(manifest, "\toutput/tokens.css\t"), strings.Index(manifest, "\twarnings.txt\t"); i > j {
		t.Errorf("MANIFEST is not sorted:\n%s", manifest)
	}
}

func TestReport_StoreCopySnapshot(t *testing.T) {
	r := newTestReport(t)

	src := filepath.Join(t.TempDir(), "colors.json")
	if err := os.WriteFile(src, []byte("first"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := r.StoreCopy("colors.json", src); err != nil {
		t.Fatalf("StoreCopy() error: %v", err)
	}
	// later changes do not affect stored copy
	if err := os.WriteFile(src, []byte("second"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := r.StoreCopy("colors.json", src); err != nil {
		t.Fatalf("StoreCopy() error: %v", err)
	}

	var copies []string
	for _, e := range r.entries {
		copies = append(copies, e.actual)
	}

	name := r.Name()
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	var contents []string
	for _, data := range readArchive(t, name) {
		contents = append(contents, data)
	}
	joined := strings.Join(contents, "|")
	if !strings.Contains(joined, "first") || !strings.Contains(joined, "second") {
		t.Errorf("report should keep both versions, got %q", joined)
	}

	for _, c := range copies {
		if _, err := os.Stat(c); !os.IsNotExist(err) {
			t.Errorf("temporary copy %s should be removed", c)
		}
	}
	if _, err := os.Stat(src); err != nil {
		t.Errorf("original file should not be removed: %v", err)
	}
}

func TestReport_StoreCopyMissing(t *testing.T) {
	r := newTestReport(t)
	defer r.Close()

	if err := r.StoreCopy("tokens", filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing source")
	}
}

func TestReport_StoreTwicePanics(t *testing.T) {
	r := newTestReport(t)
	defer r.Close()

	r.StoreData("warnings.txt", []byte("a"))
	defer func() {
		if recover() == nil {
			t.Error("StoreData() should panic on duplicate name")
		}
	}()
	r.StoreData("warnings.txt", []byte("b"))
}

func TestReportClose_KeepsStoredFiles(t *testing.T) {
	r := newTestReport(t)

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "debug.txt"), []byte("test"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	r.Store("workdir", dir)

	if err := r.Close(); err != nil {
		t.Fatalf("Report.Close() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "debug.txt")); err != nil {
		t.Errorf("stored file should not be removed, but got error: %v", err)
	}
}

func TestReportClose_NilReport(t *testing.T) {
	var r *Report
	if err := r.Close(); err != nil {
		t.Errorf("Close on nil report should not error, got: %v", err)
	}
	// every method is safe on nil report
	r.Store("a", "b")
	r.StoreData("a", nil)
	if err := r.StoreCopy("a", "b"); err != nil {
		t.Errorf("StoreCopy on nil report should not error, got: %v", err)
	}
	if r.Name() != "" {
		t.Error("Name of nil report should be empty")
	}
}

func TestReportClose_NilFile(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	if err := r.Close(); err != nil {
		t.Errorf("Close with nil file should not error, got: %v", err)
	}
}

func TestPrepareManifest_Empty(t *testing.T) {
	names, buf := prepareManifest(nil)
	if names != nil || buf.Len() != 0 {
		t.Errorf("unexpected manifest for no entries: %v %q", names, buf.String())
	}
}
