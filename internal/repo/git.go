package repo

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// InitGit makes dir a git repository and commits everything in it. It does
// nothing and returns false if dir already is a repository.
func InitGit(dir, message string) (bool, error) {
	if _, err := git.PlainOpen(dir); err == nil {
		return false, nil
	} else if !errors.Is(err, git.ErrRepositoryNotExists) {
		return false, fmt.Errorf("opening git repository: %w", err)
	}

	r, err := git.PlainInit(dir, false)
	if err != nil {
		return false, fmt.Errorf("git init: %w", err)
	}
	wt, err := r.Worktree()
	if err != nil {
		return false, fmt.Errorf("git init: %w", err)
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return false, fmt.Errorf("git add: %w", err)
	}

	sig := signature()
	if _, err := wt.Commit(message, &git.CommitOptions{Author: sig, Committer: sig}); err != nil {
		return false, fmt.Errorf("git commit: %w", err)
	}
	return true, nil
}

// signature uses the identity from the user's git config when there is one.
func signature() *object.Signature {
	sig := &object.Signature{Name: "zmkgen", Email: "zmkgen@localhost", When: time.Now()}
	cfg, err := gitconfig.LoadConfig(gitconfig.GlobalScope)
	if err != nil {
		return sig
	}
	if cfg.User.Name != "" {
		sig.Name = cfg.User.Name
	}
	if cfg.User.Email != "" {
		sig.Email = cfg.User.Email
	}
	return sig
}
