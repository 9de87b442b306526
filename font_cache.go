package slidezone

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// labelFontNames are tried in order when looking for a face to label
// previews with.
var labelFontNames = []string{
	"dejavu sans", "liberation sans", "noto sans", "arial", "helvetica", "segoe ui",
}

// maxFontScanDepth limits recursive directory traversal when scanning for fonts.
const maxFontScanDepth = 3

// maxFontFileSize limits the size of individual font files loaded into memory.
const maxFontFileSize = 20 << 20 // 20 MB

// FontCache finds TrueType and OpenType fonts for preview labels. The
// directories are scanned lazily on first use. A FontCache is safe for
// concurrent use; the faces it returns are not, so every call builds a new one.
type FontCache struct {
	mu      sync.RWMutex
	dirs    []string
	fonts   map[string]*opentype.Font // lowercase name -> parsed font
	scanned bool
}

// NewFontCache creates a FontCache that searches the OS font directories
// and extraDirs.
func NewFontCache(extraDirs ...string) *FontCache {
	return &FontCache{
		dirs:  append(systemFontDirs(), extraDirs...),
		fonts: make(map[string]*opentype.Font),
	}
}

// GetFace returns a face for the named font at sizePt (72 DPI), or nil if
// no such font was found.
func (fc *FontCache) GetFace(name string, sizePt float64) font.Face {
	fc.ensureScanned()

	fc.mu.RLock()
	f := fc.fonts[strings.ToLower(name)]
	fc.mu.RUnlock()
	if f == nil {
		return nil
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    sizePt,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil
	}
	return face
}

// LabelFace returns the first available face among the usual sans-serif
// families, falling back to the built-in 7x13 bitmap face.
func (fc *FontCache) LabelFace(sizePt float64) font.Face {
	if fc != nil {
		for _, name := range labelFontNames {
			if face := fc.GetFace(name, sizePt); face != nil {
				return face
			}
		}
	}
	return basicfont.Face7x13
}

// LoadFont loads a font file and registers it under name as well as its
// family and full names.
func (fc *FontCache) LoadFont(name, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Size() > maxFontFileSize {
		return fmt.Errorf("font file too large: %d bytes (max %d)", info.Size(), maxFontFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return fc.LoadFontData(name, data)
}

// LoadFontData registers a font from raw bytes.
func (fc *FontCache) LoadFontData(name string, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", name, err)
	}
	fc.mu.Lock()
	fc.fonts[strings.ToLower(name)] = f
	fc.registerNames(f)
	fc.mu.Unlock()
	return nil
}

func (fc *FontCache) ensureScanned() {
	fc.mu.RLock()
	scanned := fc.scanned
	fc.mu.RUnlock()
	if scanned {
		return
	}

	fc.mu.Lock()
	defer fc.mu.Unlock()
	if fc.scanned {
		return
	}
	fc.scanned = true
	for _, dir := range fc.dirs {
		fc.scanDir(dir, 0)
	}
}

func (fc *FontCache) scanDir(dir string, depth int) {
	if depth > maxFontScanDepth {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		p := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			fc.scanDir(p, depth+1)
			continue
		}

		lower := strings.ToLower(entry.Name())
		ext := filepath.Ext(lower)
		if ext != ".ttf" && ext != ".otf" && ext != ".ttc" && ext != ".otc" {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.Size() > maxFontFileSize {
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		base := strings.TrimSuffix(lower, ext)

		if ext == ".ttc" || ext == ".otc" {
			coll, err := opentype.ParseCollection(data)
			if err != nil {
				continue
			}
			for i := 0; i < coll.NumFonts(); i++ {
				f, err := coll.Font(i)
				if err != nil {
					continue
				}
				if i == 0 {
					fc.fonts[base] = f
				}
				fc.registerNames(f)
			}
			continue
		}

		f, err := opentype.Parse(data)
		if err != nil {
			continue
		}
		fc.fonts[base] = f
		fc.registerNames(f)
	}
}

// registerNames registers f under its family and full names. The caller
// holds fc.mu.
func (fc *FontCache) registerNames(f *opentype.Font) {
	for _, id := range []sfnt.NameID{sfnt.NameIDFamily, sfnt.NameIDFull} {
		if name, err := f.Name(nil, id); err == nil && name != "" {
			fc.fonts[strings.ToLower(name)] = f
		}
	}
}

// systemFontDirs returns OS-specific font directories.
func systemFontDirs() []string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "windows":
		windir := os.Getenv("WINDIR")
		if windir == "" {
			windir = `C:\Windows`
		}
		dirs := []string{filepath.Join(windir, "Fonts")}
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			dirs = append(dirs, filepath.Join(local, "Microsoft", "Windows", "Fonts"))
		}
		return dirs
	case "darwin":
		dirs := []string{"/System/Library/Fonts", "/Library/Fonts"}
		if home != "" {
			dirs = append(dirs, filepath.Join(home, "Library", "Fonts"))
		}
		return dirs
	default:
		dirs := []string{"/usr/share/fonts", "/usr/local/share/fonts"}
		if home != "" {
			dirs = append(dirs, filepath.Join(home, ".local", "share", "fonts"), filepath.Join(home, ".fonts"))
		}
		return dirs
	}
}
