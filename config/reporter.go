package config

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/maruel/natural"

	"brandcss/misc"
)

type ReporterConfig struct {
	Destination string `yaml:"destination" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
}

// Prepare creates initialized empty report.
func (conf *ReporterConfig) Prepare() (*Report, error) {
	r := &Report{id: uuid.New(), entries: make(map[string]reportEntry)}

	if f, err := os.Create(conf.Destination); err == nil {
		r.file = f
	} else if f, err = os.CreateTemp("", misc.GetAppName()+"-report.*.zip"); err == nil {
		r.file = f
	} else {
		return nil, fmt.Errorf("unable to create report: %w", err)
	}
	return r, nil
}

// reportEntry is either a reference to a file on disk (path) or data kept in
// memory.
type reportEntry struct {
	path  string
	data  []byte
	stamp time.Time
}

// Report accumulates everything needed to troubleshoot a run: logs, effective
// configuration, stylesheets before and after processing, tree dumps. Items
// are written into zip archive on Close.
// NOTE: presently not to be used concurrently!
type Report struct {
	id      uuid.UUID
	entries map[string]reportEntry
	file    *os.File
}

// ID returns unique identifier of the run, it is recorded in the MANIFEST.
func (r *Report) ID() string {
	if r == nil {
		return ""
	}
	return r.id.String()
}

// Name returns absolute name of the report archive.
func (r *Report) Name() string {
	if r == nil || r.file == nil {
		return ""
	}
	if n, err := filepath.Abs(r.file.Name()); err == nil {
		return n
	}
	return r.file.Name()
}

// Store remembers path of a file to be put into the report on Close, so the
// file content is taken at the very end (logs).
func (r *Report) Store(name, path string) {
	if r == nil {
		// report was not requested
		return
	}
	if p, err := filepath.Abs(path); err == nil {
		path = p
	}
	if old, exists := r.entries[name]; exists && old.path != path {
		panic(fmt.Sprintf("report entry [%s] is already taken by %s, refusing %s", name, old.path, path))
	}
	r.entries[name] = reportEntry{path: path}
}

// StoreData puts data into the report under requested name. Repeated names
// are versioned, so the same stylesheet may be stored more than once.
func (r *Report) StoreData(name string, data []byte) {
	if r == nil {
		return
	}
	e := reportEntry{data: bytes.Clone(data), stamp: time.Now()}
	if _, exists := r.entries[name]; exists {
		ext := filepath.Ext(name)
		name = fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ext), e.stamp.UnixNano(), ext)
	}
	r.entries[name] = e
}

// StoreText is StoreData for strings.
func (r *Report) StoreText(name, text string) {
	r.StoreData(name, []byte(text))
}

// Close writes the report archive. Calling it on nil report is fine.
func (r *Report) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	defer r.file.Close()

	arc := zip.NewWriter(r.file)

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Sort(natural.StringSlice(names))

	var manifest bytes.Buffer
	fmt.Fprintf(&manifest, "%s %s report %s\n", misc.GetAppName(), misc.GetVersion(), r.id)
	for _, name := range names {
		e := r.entries[name]
		if e.path != "" {
			fmt.Fprintf(&manifest, "%s\t%s\n", name, e.path)
		} else {
			fmt.Fprintf(&manifest, "%s\t<data %d bytes>\n", name, len(e.data))
		}
	}
	if err := addToArchive(arc, "MANIFEST", time.Now(), &manifest); err != nil {
		return err
	}

	for _, name := range names {
		e := r.entries[name]
		if e.path == "" {
			if err := addToArchive(arc, name, e.stamp, bytes.NewReader(e.data)); err != nil {
				return err
			}
			continue
		}
		if err := addFileToArchive(arc, name, e.path); err != nil {
			return err
		}
	}
	return arc.Close()
}

func addFileToArchive(arc *zip.Writer, name, path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		// absent files and directories are ignored
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return addToArchive(arc, name, info.ModTime(), f)
}

func addToArchive(arc *zip.Writer, name string, t time.Time, src io.Reader) error {
	w, err := arc.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: t})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}
