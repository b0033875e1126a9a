package dictionary

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wordsession/internal/metrics"
	"github.com/mcoot/wordsession/internal/storage/memory"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.service = New(s.storage, metrics.Nop{})
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestIsNotLoadedByDefault() {
	s.False(s.service.IsLoaded())
	s.Equal(0, s.service.WordCount())
	s.False(s.service.CheckWord(s.ctx, "cat"))
}

func (s *ServiceSuite) TestLoadWords() {
	s.Require().NoError(s.service.LoadWords([]string{"cat", "at", "tab"}))

	s.True(s.service.IsLoaded())
	s.Equal(3, s.service.WordCount())
}

func (s *ServiceSuite) TestCheckWordCaseInsensitive() {
	_ = s.service.LoadWords([]string{"Cat", "TAB"})

	s.True(s.service.CheckWord(s.ctx, "cat"))
	s.True(s.service.CheckWord(s.ctx, "CAT"))
	s.True(s.service.CheckWord(s.ctx, "tab"))
	s.False(s.service.CheckWord(s.ctx, "dog"))
}

func (s *ServiceSuite) TestIsValidWordRequiresMinLength() {
	_ = s.service.LoadWords([]string{"a", "at", "cat"})

	s.False(s.service.IsValidWord("a"))
	s.True(s.service.IsValidWord("at"))
	s.True(s.service.IsValidWord("cat"))
}

func (s *ServiceSuite) TestLoadFromStorage() {
	s.Require().NoError(s.storage.SaveDictionaryWords(s.ctx, []string{"quiz", "zap"}))

	s.Require().NoError(s.service.LoadFromStorage(s.ctx))

	s.Equal(2, s.service.WordCount())
	s.True(s.service.IsValidWord("QUIZ"))
}

func (s *ServiceSuite) TestLoadFromStorageWhenEmpty() {
	err := s.service.LoadFromStorage(s.ctx)
	s.ErrorIs(err, ErrDictionaryNotLoaded)
}

func (s *ServiceSuite) TestLoadFromFileSavesToStorage() {
	path := filepath.Join(s.T().TempDir(), "words.txt")
	s.Require().NoError(os.WriteFile(path, []byte("# comment\ncat\n\n  at  \ntab\n"), 0o600))

	s.Require().NoError(s.service.LoadFromFile(s.ctx, path))

	s.Equal(3, s.service.WordCount())
	s.True(s.service.IsValidWord("at"))

	stored, err := s.storage.GetDictionaryWords(s.ctx)
	s.Require().NoError(err)
	s.ElementsMatch([]string{"cat", "at", "tab"}, stored)
}

func (s *ServiceSuite) TestLoadFromFileMissing() {
	err := s.service.LoadFromFile(s.ctx, filepath.Join(s.T().TempDir(), "missing.txt"))
	s.Error(err)
	s.False(s.service.IsLoaded())
}
