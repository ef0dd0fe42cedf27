package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"ozen/internal/services"
	"ozen/internal/textutil"
)

// TimestampLayout names run directories.
const TimestampLayout = "20060102-150405"

const (
	lockFileName   = ".ozen.lock"
	wavsDirName    = "wavs"
	sourceFileName = "source.wav"
	maxCollisions  = 100
)

// Layout describes one run directory.
type Layout struct {
	Project    string
	ProjectDir string
	Timestamp  string
	Root       string
	Wavs       string

	lock *flock.Flock
}

// Create makes the run directory for project under outputDir and takes the
// project lock. Callers must Close the layout to release it.
func Create(outputDir, project string, now time.Time) (*Layout, error) {
	if strings.TrimSpace(outputDir) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "prepare", "create layout", "output directory not set", nil)
	}
	project = textutil.SanitizeToken(project)
	projectDir := filepath.Join(outputDir, project)
	if err := os.MkdirAll(projectDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "prepare", "create layout", projectDir, err)
	}

	lock := flock.New(filepath.Join(projectDir, lockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "prepare", "acquire project lock", projectDir, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "prepare", "acquire project lock",
			fmt.Sprintf("another ozen run is writing to %s", projectDir), nil)
	}

	timestamp := now.Format(TimestampLayout)
	root, err := makeRunDir(projectDir, timestamp)
	if err != nil {
		_ = lock.Unlock()
		return nil, services.Wrap(services.ErrConfiguration, "prepare", "create run directory", projectDir, err)
	}
	wavs := filepath.Join(root, wavsDirName)
	if err := os.Mkdir(wavs, 0o755); err != nil {
		_ = lock.Unlock()
		return nil, services.Wrap(services.ErrConfiguration, "prepare", "create wavs directory", wavs, err)
	}

	return &Layout{
		Project:    project,
		ProjectDir: projectDir,
		Timestamp:  filepath.Base(root),
		Root:       root,
		Wavs:       wavs,
		lock:       lock,
	}, nil
}

// makeRunDir creates <projectDir>/<timestamp>, adding a numeric suffix when
// a run already started within the same second.
func makeRunDir(projectDir, timestamp string) (string, error) {
	for i := 0; i < maxCollisions; i++ {
		name := timestamp
		if i > 0 {
			name = timestamp + "-" + strconv.Itoa(i+1)
		}
		dir := filepath.Join(projectDir, name)
		err := os.Mkdir(dir, 0o755)
		if err == nil {
			return dir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", err
		}
	}
	return "", fmt.Errorf("too many runs at %s", timestamp)
}

// Close releases the project lock.
func (l *Layout) Close() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}

// SourcePath is where the prepared audio is written.
func (l *Layout) SourcePath() string {
	return filepath.Join(l.Root, sourceFileName)
}

// InputCopyPath is where the untouched input is copied, keeping its extension.
func (l *Layout) InputCopyPath(input string) string {
	return filepath.Join(l.Root, "input"+strings.ToLower(filepath.Ext(input)))
}

// ClipPath returns the absolute path of a clip file.
func (l *Layout) ClipPath(clip string) string {
	return filepath.Join(l.Wavs, clip)
}

// ClipName returns the file name of clip idx for the given base name.
func ClipName(base string, idx int) string {
	return fmt.Sprintf("%s-%d.wav", base, idx)
}

// ClipBase derives the clip base name from the input path.
func ClipBase(input string) string {
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return textutil.SanitizeClipBase(stem)
}
