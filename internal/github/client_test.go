package github

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePRURL(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		wantOwner  string
		wantRepo   string
		wantNumber int
		wantErr    bool
	}{
		{"https url", "https://github.com/golang/go/pull/12345", "golang", "go", 12345, false},
		{"http url", "http://github.com/octo/repo/pull/1", "octo", "repo", 1, false},
		{"bare url", "github.com/octo/repo/pull/7", "octo", "repo", 7, false},
		{"trailing slash", "https://github.com/octo/repo/pull/7/", "octo", "repo", 7, false},
		{"not github", "https://gitlab.com/octo/repo/pull/7", "", "", 0, true},
		{"issue url", "https://github.com/octo/repo/issues/7", "", "", 0, true},
		{"repo url", "https://github.com/octo/repo", "", "", 0, true},
		{"bad number", "https://github.com/octo/repo/pull/abc", "", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, number, err := ParsePRURL(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOwner, owner)
			assert.Equal(t, tt.wantRepo, repo)
			assert.Equal(t, tt.wantNumber, number)
		})
	}
}

func TestIsDocFile(t *testing.T) {
	assert.True(t, isDocFile("README.md"))
	assert.True(t, isDocFile("docs/guide.RST"))
	assert.True(t, isDocFile("manual.adoc"))
	assert.False(t, isDocFile("main.go"))
	assert.False(t, isDocFile("markdown.go"))
}

func TestIsTestFile(t *testing.T) {
	assert.True(t, isTestFile("pkg/foo_test.go"))
	assert.True(t, isTestFile("test_parser.py"))
	assert.True(t, isTestFile("src/tests/helper.go"))
	assert.True(t, isTestFile("web/__tests__/app.spec.js"))
	assert.False(t, isTestFile("pkg/foo.go"))
	assert.False(t, isTestFile("contest.go"))
	assert.False(t, isTestFile("latest_news.md"))
}
