package git

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/jprybylski/batchrun/internal/core"
	"github.com/jprybylski/batchrun/internal/registry"
	"github.com/jprybylski/batchrun/internal/uri"
)

type handler struct{}

func New() *handler               { return &handler{} }
func (h *handler) Scheme() string { return "git" }

// Localize writes the file's content at the URI's revision into the cache.
//
// Editors address the left side of a diff against the working copy as
// git:<path>?{"path":<abs path>,"ref":<rev>}. An empty ref or "~" means the
// staged (index) version.
func (h *handler) Localize(_ context.Context, id uri.ID, cacheDir string) (string, error) {
	filePath, ref, err := parseGitURI(id)
	if err != nil {
		return "", err
	}

	repo, err := git.PlainOpenWithOptions(filepath.Dir(filePath), &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("git: open repository for %s: %w", filePath, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(wt.Filesystem.Root(), filePath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("git: %s is outside the repository", filePath)
	}
	rel = filepath.ToSlash(rel)

	var r io.ReadCloser
	if ref == "" || ref == "~" {
		r, err = blobFromIndex(repo, rel)
	} else {
		var commit *object.Commit
		commit, err = resolveRefCommit(repo, ref)
		if err == nil {
			r, err = blobForPathAtCommit(commit, rel)
		}
	}
	if err != nil {
		return "", err
	}
	defer r.Close()

	// The URI path may carry an editor suffix (build.sh.git); name the copy
	// after the real file so its extension selects the interpreter.
	dest := core.CachePathNamed(cacheDir, id, filepath.Base(filePath))
	if err := core.WriteAtomic(dest, r); err != nil {
		return "", err
	}
	return dest, nil
}

// --- helpers ---

type gitQuery struct {
	Path string `json:"path"`
	Ref  string `json:"ref"`
}

func parseGitURI(id uri.ID) (filePath, ref string, err error) {
	var q gitQuery
	if raw := id.DecodedQuery(); raw != "" {
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			return "", "", fmt.Errorf("git: malformed query: %w", err)
		}
	}
	filePath = q.Path
	if filePath == "" {
		if id.Path == "" {
			return "", "", errors.New("git: require a path")
		}
		filePath, err = uri.ID{Scheme: uri.FileScheme, Path: id.Path}.LocalPath()
		if err != nil {
			return "", "", err
		}
	}
	return filepath.Clean(filePath), q.Ref, nil
}

func resolveRefCommit(repo *git.Repository, ref string) (*object.Commit, error) {
	h, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return nil, fmt.Errorf("git: cannot resolve ref %q: %w", ref, err)
	}
	hash := *h
	// Peel annotated tags
	if tobj, err := repo.TagObject(hash); err == nil {
		hash = tobj.Target
	}
	return repo.CommitObject(hash)
}

func blobForPathAtCommit(commit *object.Commit, filePath string) (io.ReadCloser, error) {
	t, err := commit.Tree()
	if err != nil {
		return nil, err
	}
	f, err := t.File(filePath)
	if err != nil {
		return nil, fmt.Errorf("git: file %q not found at %s", filePath, commit.Hash.String())
	}
	return f.Blob.Reader()
}

func blobFromIndex(repo *git.Repository, filePath string) (io.ReadCloser, error) {
	idx, err := repo.Storer.Index()
	if err != nil {
		return nil, err
	}
	e, err := idx.Entry(filePath)
	if err != nil {
		return nil, fmt.Errorf("git: file %q not staged", filePath)
	}
	blob, err := repo.BlobObject(e.Hash)
	if err != nil {
		return nil, err
	}
	return blob.Reader()
}

func init() { registry.Register(New()) }
