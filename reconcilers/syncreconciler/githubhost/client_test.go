/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package githubhost

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"chainguard.dev/downstreamsync/internal/retry"
	"chainguard.dev/downstreamsync/reconcilers/syncreconciler"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-github/v84/github"
	"github.com/stretchr/testify/require"
)

// newTestClient starts a server for mux and returns a Client talking to it.
func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := New(srv.Client(),
		WithAPIURL(srv.URL, srv.URL+"/graphql"),
		WithRetryConfig(retry.Config{MaxRetries: 2, BaseBackoff: time.Millisecond, MaxBackoff: time.Millisecond}),
	)
	require.NoError(t, err)
	return c
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_, _ = io.WriteString(w, `{"message":"Not Found"}`)
}

func fileJSON(path, content string) map[string]any {
	return map[string]any{
		"type":     "file",
		"path":     path,
		"sha":      "sha-" + path,
		"encoding": "base64",
		"content":  base64.StdEncoding.EncodeToString([]byte(content)),
	}
}

func TestGetContent(t *testing.T) {
	var refs []string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/o/r/contents/{path...}", func(w http.ResponseWriter, r *http.Request) {
		refs = append(refs, r.URL.Query().Get("ref"))
		switch r.PathValue("path") {
		case "specs/a.yaml":
			writeJSON(t, w, http.StatusOK, fileJSON("specs/a.yaml", "openapi: 3.1.0\n"))
		case "specs/big.yaml":
			writeJSON(t, w, http.StatusOK, map[string]any{"type": "file", "sha": "bigsha", "encoding": "none", "content": ""})
		case "specs":
			writeJSON(t, w, http.StatusOK, []any{fileJSON("specs/a.yaml", "x")})
		default:
			notFoundHandler(w, r)
		}
	})
	mux.HandleFunc("GET /repos/o/r/git/blobs/bigsha", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "large content")
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	got, err := c.GetContent(ctx, "o", "r", "main", "specs/a.yaml")
	require.NoError(t, err)
	require.Equal(t, "openapi: 3.1.0\n", string(got))
	require.Equal(t, "main", refs[0])

	got, err = c.GetContent(ctx, "o", "r", "main", "specs/big.yaml")
	require.NoError(t, err)
	require.Equal(t, "large content", string(got))

	_, err = c.GetContent(ctx, "o", "r", "main", "specs/missing.yaml")
	require.ErrorIs(t, err, syncreconciler.ErrNotFound)

	_, err = c.GetContent(ctx, "o", "r", "main", "specs")
	require.Error(t, err)
	require.NotErrorIs(t, err, syncreconciler.ErrNotFound)

	exists, err := c.Exists(ctx, "o", "r", "", "specs/a.yaml")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = c.Exists(ctx, "o", "r", "", "specs/missing.yaml")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestGetContentRetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/o/r/contents/{path...}", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			writeJSON(t, w, http.StatusBadGateway, map[string]any{"message": "Bad Gateway"})
			return
		}
		writeJSON(t, w, http.StatusOK, fileJSON("a.yaml", "X"))
	})
	c := newTestClient(t, mux)

	got, err := c.GetContent(context.Background(), "o", "r", "", "a.yaml")
	require.NoError(t, err)
	require.Equal(t, "X", string(got))
	require.EqualValues(t, 2, calls.Load())
}

func TestGetContentServerErrorIsNotNotFound(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/o/r/contents/{path...}", func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		writeJSON(t, w, http.StatusInternalServerError, map[string]any{"message": "boom"})
	})
	c := newTestClient(t, mux)

	_, err := c.GetContent(context.Background(), "o", "r", "", "a.yaml")
	require.Error(t, err)
	require.NotErrorIs(t, err, syncreconciler.ErrNotFound)
	require.EqualValues(t, 3, calls.Load(), "one attempt plus two retries")
}

func TestListPullRequestFiles(t *testing.T) {
	mux := http.NewServeMux()
	var srvURL string
	mux.HandleFunc("GET /repos/octo/source/pulls/7/files", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			writeJSON(t, w, http.StatusOK, []map[string]any{{"filename": "c.yaml", "status": "removed"}})
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<%s/repos/octo/source/pulls/7/files?page=2>; rel="next"`, srvURL))
		writeJSON(t, w, http.StatusOK, []map[string]any{{"filename": "a.yaml"}, {"filename": "b/b.yaml"}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	srvURL = srv.URL

	c, err := New(srv.Client(), WithAPIURL(srv.URL, srv.URL+"/graphql"))
	require.NoError(t, err)

	files, err := c.ListPullRequestFiles(context.Background(), "octo", "source", 7)
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"a.yaml", "b/b.yaml", "c.yaml"}, files); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}
}

func TestFindOpenPullRequest(t *testing.T) {
	var gotVars map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("POST /graphql", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotVars = body.Variables

		var nodes []map[string]any
		if body.Variables["headRef"] == "automated-oas-update" {
			nodes = []map[string]any{{
				"number":              99,
				"url":                 "https://github.com/fork/r/pull/99",
				"headRepositoryOwner": map[string]any{"login": "fork"},
			}, {
				"number":              3,
				"url":                 "https://github.com/o/r/pull/3",
				"headRepositoryOwner": map[string]any{"login": "o"},
			}}
		}
		writeJSON(t, w, http.StatusOK, map[string]any{
			"data": map[string]any{
				"repository": map[string]any{
					"pullRequests": map[string]any{"nodes": nodes},
				},
			},
		})
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	pr, err := c.FindOpenPullRequest(ctx, "o", "r", "automated-oas-update")
	require.NoError(t, err)
	require.Equal(t, &syncreconciler.PullRequest{Number: 3, URL: "https://github.com/o/r/pull/3"}, pr)
	require.Equal(t, "o", gotVars["owner"])
	require.Equal(t, "r", gotVars["repo"])

	pr, err = c.FindOpenPullRequest(ctx, "o", "r", "other-branch")
	require.NoError(t, err)
	require.Nil(t, pr)
}

func TestCreateAndClosePullRequest(t *testing.T) {
	var created map[string]any
	var edited map[string]any
	var creates atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/o/r/pulls", func(w http.ResponseWriter, r *http.Request) {
		creates.Add(1)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
		writeJSON(t, w, http.StatusCreated, map[string]any{"number": 5, "html_url": "https://github.com/o/r/pull/5"})
	})
	mux.HandleFunc("PATCH /repos/o/r/pulls/5", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&edited))
		writeJSON(t, w, http.StatusOK, map[string]any{"number": 5, "state": "closed"})
	})
	mux.HandleFunc("POST /repos/o/failing/pulls", func(w http.ResponseWriter, _ *http.Request) {
		creates.Add(1)
		writeJSON(t, w, http.StatusBadGateway, map[string]any{"message": "Bad Gateway"})
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	pr, err := c.CreatePullRequest(ctx, "o", "r", syncreconciler.NewPullRequest{
		Title: "Hello",
		Body:  "This is in a test case",
		Head:  "automated-oas-update",
		Base:  "main",
	})
	require.NoError(t, err)
	require.Equal(t, 5, pr.Number)
	require.Equal(t, "https://github.com/o/r/pull/5", pr.URL)
	require.Equal(t, map[string]any{
		"title": "Hello",
		"body":  "This is in a test case",
		"head":  "automated-oas-update",
		"base":  "main",
	}, created)

	require.NoError(t, c.ClosePullRequest(ctx, "o", "r", 5))
	require.Equal(t, "closed", edited["state"])

	creates.Store(0)
	_, err = c.CreatePullRequest(ctx, "o", "failing", syncreconciler.NewPullRequest{Head: "b", Base: "main"})
	require.Error(t, err)
	require.EqualValues(t, 1, creates.Load(), "server errors on create must not be retried")
}

// fakeGit records the git data API calls made by PushChanges.
type fakeGit struct {
	t *testing.T

	mu         sync.Mutex
	branches   map[string]string
	existing   map[string]bool
	blobs      []string
	createdRef map[string]any
	tree       map[string]any
	commit     map[string]any
	updatedRef map[string]any
	compared   []string
	// treeSHA is returned from tree creation.
	treeSHA string
	// aheadBy is reported when comparing the base with the branch.
	aheadBy int
}

func (f *fakeGit) mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/o/r/git/ref/heads/{branch...}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		sha, ok := f.branches[r.PathValue("branch")]
		if !ok {
			notFoundHandler(w, r)
			return
		}
		writeJSON(f.t, w, http.StatusOK, map[string]any{
			"ref":    "refs/heads/" + r.PathValue("branch"),
			"object": map[string]any{"sha": sha, "type": "commit"},
		})
	})
	mux.HandleFunc("POST /repos/o/r/git/refs", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&f.createdRef))
		writeJSON(f.t, w, http.StatusCreated, map[string]any{"ref": f.createdRef["ref"]})
	})
	mux.HandleFunc("GET /repos/o/r/git/commits/{sha}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(f.t, w, http.StatusOK, map[string]any{
			"sha":  r.PathValue("sha"),
			"tree": map[string]any{"sha": "tree-of-" + r.PathValue("sha")},
		})
	})
	mux.HandleFunc("GET /repos/o/r/contents/{path...}", func(w http.ResponseWriter, r *http.Request) {
		if !f.existing[r.PathValue("path")] {
			notFoundHandler(w, r)
			return
		}
		writeJSON(f.t, w, http.StatusOK, fileJSON(r.PathValue("path"), "old"))
	})
	mux.HandleFunc("POST /repos/o/r/git/blobs", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		var req struct {
			Content  string `json:"content"`
			Encoding string `json:"encoding"`
		}
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(f.t, "base64", req.Encoding)
		raw, err := base64.StdEncoding.DecodeString(req.Content)
		require.NoError(f.t, err)
		f.blobs = append(f.blobs, string(raw))
		writeJSON(f.t, w, http.StatusCreated, map[string]any{"sha": fmt.Sprintf("blob-%d", len(f.blobs))})
	})
	mux.HandleFunc("POST /repos/o/r/git/trees", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&f.tree))
		writeJSON(f.t, w, http.StatusCreated, map[string]any{"sha": f.treeSHA})
	})
	mux.HandleFunc("POST /repos/o/r/git/commits", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&f.commit))
		writeJSON(f.t, w, http.StatusCreated, map[string]any{"sha": "new-commit"})
	})
	mux.HandleFunc("PATCH /repos/o/r/git/refs/heads/{branch...}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&f.updatedRef))
		f.updatedRef["branch"] = r.PathValue("branch")
		writeJSON(f.t, w, http.StatusOK, map[string]any{"ref": "refs/heads/" + r.PathValue("branch")})
	})
	mux.HandleFunc("GET /repos/o/r/compare/{basehead}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.compared = append(f.compared, r.PathValue("basehead"))
		writeJSON(f.t, w, http.StatusOK, map[string]any{"ahead_by": f.aheadBy, "status": "ahead"})
	})
	return mux
}

func testChangeSet() *syncreconciler.ChangeSet {
	cs := syncreconciler.NewChangeSet()
	cs.Upsert("specs/a.yaml", []byte("X"))
	cs.Delete("specs/old.yaml")
	cs.Delete("specs/never.yaml")
	return cs
}

func TestPushChangesCreatesBranch(t *testing.T) {
	f := &fakeGit{
		t:        t,
		branches: map[string]string{"main": "base-sha"},
		existing: map[string]bool{"specs/old.yaml": true},
		treeSHA:  "new-tree",
	}
	c := newTestClient(t, f.mux())

	res, err := c.PushChanges(context.Background(), syncreconciler.PushRequest{
		Owner:   "o",
		Repo:    "r",
		Branch:  "automated/oas-update",
		Base:    "main",
		Changes: []syncreconciler.Change{{Message: "Automated OAS update: specs/a.yaml, specs/old.yaml", Files: testChangeSet()}},
	})
	require.NoError(t, err)
	require.Equal(t, &syncreconciler.PushResult{BranchCreated: true, HeadSHA: "new-commit", Commits: 1, Ahead: true}, res)

	require.Equal(t, map[string]any{"ref": "refs/heads/automated/oas-update", "sha": "new-commit"}, f.createdRef)
	require.Equal(t, []string{"X"}, f.blobs)

	require.Equal(t, "tree-of-base-sha", f.tree["base_tree"])
	entries, ok := f.tree["tree"].([]any)
	require.True(t, ok)
	require.Len(t, entries, 2, "the deletion of a missing path is dropped")
	require.Equal(t, map[string]any{"path": "specs/a.yaml", "mode": "100644", "type": "blob", "sha": "blob-1"}, entries[0])
	deletion := entries[1].(map[string]any)
	require.Equal(t, "specs/old.yaml", deletion["path"])
	sha, present := deletion["sha"]
	require.True(t, present, "deletions must send an explicit null sha")
	require.Nil(t, sha)

	require.Equal(t, "Automated OAS update: specs/a.yaml, specs/old.yaml", f.commit["message"])
	require.Equal(t, []any{"base-sha"}, f.commit["parents"])
	require.Equal(t, "new-tree", f.commit["tree"])
	require.Nil(t, f.updatedRef, "a new branch is created at its final commit")
}

func TestPushChangesUpdatesExistingBranch(t *testing.T) {
	f := &fakeGit{
		t:        t,
		branches: map[string]string{"main": "base-sha", "sync": "branch-sha"},
		existing: map[string]bool{"specs/old.yaml": true},
		treeSHA:  "new-tree",
	}
	c := newTestClient(t, f.mux())

	res, err := c.PushChanges(context.Background(), syncreconciler.PushRequest{
		Owner:   "o",
		Repo:    "r",
		Branch:  "sync",
		Base:    "main",
		Changes: []syncreconciler.Change{{Message: "msg", Files: testChangeSet()}},
	})
	require.NoError(t, err)
	require.Equal(t, &syncreconciler.PushResult{HeadSHA: "new-commit", Commits: 1, Ahead: true}, res)
	require.Nil(t, f.createdRef)
	require.Equal(t, []any{"branch-sha"}, f.commit["parents"])
	require.Equal(t, map[string]any{"sha": "new-commit", "force": true, "branch": "sync"}, f.updatedRef)
	require.Empty(t, f.compared)
}

func TestPushChangesNothingToCommitOnNewBranch(t *testing.T) {
	f := &fakeGit{t: t, branches: map[string]string{"main": "base-sha"}}
	c := newTestClient(t, f.mux())

	cs := syncreconciler.NewChangeSet()
	cs.Delete("specs/never.yaml")
	res, err := c.PushChanges(context.Background(), syncreconciler.PushRequest{
		Owner:   "o",
		Repo:    "r",
		Branch:  "sync",
		Base:    "main",
		Changes: []syncreconciler.Change{{Message: "msg", Files: cs}},
	})
	require.NoError(t, err)
	require.Equal(t, &syncreconciler.PushResult{HeadSHA: "base-sha"}, res)
	require.False(t, res.Ahead)
	require.Nil(t, f.createdRef, "no branch is created without a commit")
	require.Nil(t, f.tree)
	require.Nil(t, f.commit)
}

func TestPushChangesExistingBranchNoop(t *testing.T) {
	f := &fakeGit{
		t:        t,
		branches: map[string]string{"main": "base-sha", "sync": "branch-sha"},
		existing: map[string]bool{"specs/old.yaml": true},
		// Same tree as the branch head: nothing changes.
		treeSHA: "tree-of-branch-sha",
		aheadBy: 1,
	}
	c := newTestClient(t, f.mux())

	res, err := c.PushChanges(context.Background(), syncreconciler.PushRequest{
		Owner:   "o",
		Repo:    "r",
		Branch:  "sync",
		Base:    "main",
		Changes: []syncreconciler.Change{{Message: "msg", Files: testChangeSet()}},
	})
	require.NoError(t, err)
	require.Equal(t, &syncreconciler.PushResult{HeadSHA: "branch-sha", Ahead: true}, res)
	require.Nil(t, f.createdRef)
	require.Nil(t, f.commit)
	require.Nil(t, f.updatedRef)
	require.Equal(t, []string{"main...sync"}, f.compared)
}

func TestPushChangesExistingBranchEvenWithBase(t *testing.T) {
	f := &fakeGit{
		t:        t,
		branches: map[string]string{"main": "base-sha", "sync": "base-sha"},
		treeSHA:  "tree-of-base-sha",
	}
	c := newTestClient(t, f.mux())

	cs := syncreconciler.NewChangeSet()
	cs.Upsert("specs/a.yaml", []byte("X"))
	res, err := c.PushChanges(context.Background(), syncreconciler.PushRequest{
		Owner:   "o",
		Repo:    "r",
		Branch:  "sync",
		Base:    "main",
		Changes: []syncreconciler.Change{{Message: "msg", Files: cs}},
	})
	require.NoError(t, err)
	require.Equal(t, &syncreconciler.PushResult{HeadSHA: "base-sha"}, res)
	require.Equal(t, []string{"main...sync"}, f.compared)
}

func TestPushChangesMissingBase(t *testing.T) {
	f := &fakeGit{t: t, branches: map[string]string{}}
	c := newTestClient(t, f.mux())

	_, err := c.PushChanges(context.Background(), syncreconciler.PushRequest{
		Owner:   "o",
		Repo:    "r",
		Branch:  "sync",
		Base:    "main",
		Changes: []syncreconciler.Change{{Message: "msg", Files: testChangeSet()}},
	})
	require.ErrorIs(t, err, syncreconciler.ErrNotFound)
}

func TestIsTransient(t *testing.T) {
	require.False(t, IsTransient(nil))
	require.False(t, IsTransient(context.Canceled))
	require.False(t, IsTransient(errors.New("422 validation failed")))
	require.True(t, IsTransient(io.ErrUnexpectedEOF))
	require.True(t, IsTransient(errors.New("non-200 OK status code: 502 Bad Gateway body: \"\"")))
}

func secondaryRateLimitHandler(retryAfter string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", retryAfter)
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"message":"You have exceeded a secondary rate limit","documentation_url":"https://docs.github.com/rest/using-the-rest-api/rate-limits-for-the-rest-api#about-secondary-rate-limits"}`)
	}
}

func TestSecondaryRateLimitWaitsForRetryAfter(t *testing.T) {
	var calls atomic.Int32
	limited := secondaryRateLimitHandler("1")
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/o/r/contents/{path...}", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			limited(w, r)
			return
		}
		writeJSON(t, w, http.StatusOK, fileJSON("a.yaml", "X"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	// The backoff alone would retry after a millisecond.
	c, err := New(srv.Client(),
		WithAPIURL(srv.URL, srv.URL+"/graphql"),
		WithRetryConfig(retry.Config{MaxRetries: 2, BaseBackoff: time.Millisecond, MaxBackoff: time.Millisecond, MaxWait: time.Minute}),
	)
	require.NoError(t, err)

	start := time.Now()
	got, err := c.GetContent(context.Background(), "o", "r", "", "a.yaml")
	require.NoError(t, err)
	require.Equal(t, "X", string(got))
	require.EqualValues(t, 2, calls.Load())
	require.GreaterOrEqual(t, time.Since(start), time.Second, "the retry must wait for Retry-After")
}

func TestSecondaryRateLimitBeyondMaxWait(t *testing.T) {
	var calls atomic.Int32
	limited := secondaryRateLimitHandler("3600")
	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/o/r/pulls", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		limited(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := New(srv.Client(),
		WithAPIURL(srv.URL, srv.URL+"/graphql"),
		WithRetryConfig(retry.Config{MaxRetries: 3, BaseBackoff: time.Millisecond, MaxBackoff: time.Millisecond, MaxWait: time.Minute}),
	)
	require.NoError(t, err)

	_, err = c.CreatePullRequest(context.Background(), "o", "r", syncreconciler.NewPullRequest{Head: "b", Base: "main"})
	require.ErrorIs(t, err, retry.ErrWaitTooLong)
	var abuseErr *github.AbuseRateLimitError
	require.ErrorAs(t, err, &abuseErr)
	require.EqualValues(t, 1, calls.Load(), "an hour long wait is not retried")
}

func TestRetryAfter(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tooMany := &http.Response{StatusCode: http.StatusTooManyRequests, Header: http.Header{"Retry-After": []string{"7"}}}

	tests := []struct {
		name string
		err  error
		want time.Duration
	}{{
		name: "secondary rate limit",
		err:  &github.AbuseRateLimitError{RetryAfter: github.Ptr(60 * time.Second)},
		want: 60 * time.Second,
	}, {
		name: "secondary rate limit without retry after",
		err:  &github.AbuseRateLimitError{},
	}, {
		name: "primary rate limit",
		err:  fmt.Errorf("listing: %w", &github.RateLimitError{Rate: github.Rate{Reset: github.Timestamp{Time: now.Add(90 * time.Second)}}}),
		want: 90 * time.Second,
	}, {
		name: "primary rate limit already reset",
		err:  &github.RateLimitError{Rate: github.Rate{Reset: github.Timestamp{Time: now.Add(-time.Second)}}},
	}, {
		name: "too many requests",
		err:  &github.ErrorResponse{Response: tooMany},
		want: 7 * time.Second,
	}, {
		name: "server error",
		err:  &github.ErrorResponse{Response: &http.Response{StatusCode: http.StatusBadGateway}},
	}, {
		name: "plain error",
		err:  io.ErrUnexpectedEOF,
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, RetryAfter(tt.err, now))
		})
	}
}
