package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// knownUPFURLs pins reliable standard-PBE files for common elements,
// tried before the generic source/suffix search.
var knownUPFURLs = map[string]string{
	"Si": "https://pseudopotentials.quantum-espresso.org/upf_files/Si.pbe-n-rrkjus_psl.1.0.0.UPF",
	"Ga": "https://pseudopotentials.quantum-espresso.org/upf_files/Ga.pbe-dn-kjpaw_psl.1.0.0.UPF",
	"N":  "https://pseudopotentials.quantum-espresso.org/upf_files/N.pbe-n-kjpaw_psl.1.0.0.UPF",
	"Al": "https://pseudopotentials.quantum-espresso.org/upf_files/Al.pbe-n-kjpaw_psl.1.0.0.UPF",
	"C":  "https://pseudopotentials.quantum-espresso.org/upf_files/C.pbe-n-kjpaw_psl.1.0.0.UPF",
	"O":  "https://pseudopotentials.quantum-espresso.org/upf_files/O.pbe-n-kjpaw_psl.1.0.0.UPF",
	"Na": "https://pseudopotentials.quantum-espresso.org/upf_files/Na.pbe-sp-van_ak.UPF",
	"Zn": "https://pseudopotentials.quantum-espresso.org/upf_files/Zn.pbe-dnl-kjpaw_psl.1.0.0.UPF",
}

// upfBaseURLs are the candidate repositories, each with one %s slot for
// the remote file name.
var upfBaseURLs = []string{
	"https://pseudopotentials.quantum-espresso.org/upf_files/%s",
	"https://raw.githubusercontent.com/pseudo-dojo/pseudo-dojo/main/pseudos/nc-sr-04_pbe_standard/%s",
	"https://raw.githubusercontent.com/dalcorso/pslibrary/master/upf/%s",
}

// upfSuffixes are the file-name variants probed per repository.
var upfSuffixes = []string{
	".UPF",
	".upf",
	".pbe-n-kjpaw_psl.1.0.0.UPF",
	".pbe-n-rrkjus_psl.1.0.0.UPF",
	".pbe-dn-kjpaw_psl.1.0.0.UPF",
	".pbe-dn-rrkjus_psl.1.0.0.UPF",
	".pbe-dnl-kjpaw_psl.1.0.0.UPF",
	".pbe-sp-van_ak.UPF",
	".pbe-hgh.UPF",
	"_oncv_psp8.upf",
}

// Downloader fetches UPF pseudopotential files, trying the pinned URL
// for the element first and then the source/suffix matrix.
type Downloader struct {
	HTTP     *http.Client
	BaseURLs []string
	Known    map[string]string
}

// NewDownloader creates a Downloader with the default sources.
func NewDownloader() *Downloader {
	return &Downloader{
		HTTP:     &http.Client{Timeout: 10 * time.Second},
		BaseURLs: upfBaseURLs,
		Known:    knownUPFURLs,
	}
}

// Download saves the element's pseudopotential as <Element>.UPF inside
// outDir and returns the written path. The first HTTP 200 wins.
func (d *Downloader) Download(ctx context.Context, element, outDir string) (string, error) {
	dest := filepath.Join(outDir, element+".UPF")

	if url, ok := d.Known[element]; ok {
		if err := d.fetchTo(ctx, url, dest); err == nil {
			slog.Info("downloaded pseudopotential", "element", element, "url", url)
			return dest, nil
		} else {
			slog.Warn("pinned UPF source failed, trying generic search", "element", element, "error", err)
		}
	}

	for _, base := range d.BaseURLs {
		for _, suffix := range upfSuffixes {
			url := fmt.Sprintf(base, element+suffix)
			if err := d.fetchTo(ctx, url, dest); err == nil {
				slog.Info("downloaded pseudopotential", "element", element, "url", url)
				return dest, nil
			}
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
		}
	}

	return "", fmt.Errorf("no UPF source has a pseudopotential for %s", element)
}

func (d *Downloader) fetchTo(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := d.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	// Write to a temp file first so a connection dropped mid-body never
	// leaves a truncated file at dest.
	f, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".tmp*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dest)
}
