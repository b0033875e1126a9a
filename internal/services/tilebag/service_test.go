package tilebag

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wordsession/internal/dependencies/mocks"
	"github.com/mcoot/wordsession/internal/dependencies/random"
	"github.com/mcoot/wordsession/internal/model"
)

type ServiceSuite struct {
	suite.Suite
	random  *mocks.MockRandom
	ids     *mocks.MockIDs
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.random = mocks.NewMockRandom()
	s.ids = mocks.NewMockIDs("tile")
	s.service = New(s.random, s.ids)
}

// NewBag tests

func (s *ServiceSuite) TestNewBagHasStandardDistribution() {
	bag := s.service.NewBag()
	s.Equal(TotalTiles, bag.Len())

	counts := map[model.Letter]int{}
	total := 0
	for _, t := range bag.Tiles {
		counts[t.Letter]++
		total += t.Value
	}
	s.Equal(9, counts['A'])
	s.Equal(12, counts['E'])
	s.Equal(1, counts['Z'])
	s.Equal(2, counts[model.BlankLetter])
	s.Equal(187, total)
}

func (s *ServiceSuite) TestLetterValue() {
	s.Equal(1, LetterValue('A'))
	s.Equal(3, LetterValue('C'))
	s.Equal(10, LetterValue('Q'))
	s.Equal(0, LetterValue(model.BlankLetter))
}

// Draw tests

func (s *ServiceSuite) TestDrawRemovesChosenTiles() {
	bag := s.service.NewBag()
	// index 9 is the first B; after removing it, index 9 is the second B
	s.random.QueueIntn(9, 9, 0)

	drawn := s.service.Draw(&bag, 3)

	s.Require().Len(drawn, 3)
	s.Equal(model.Letter('B'), drawn[0].Letter)
	s.Equal(3, drawn[0].Value)
	s.Equal(model.Letter('B'), drawn[1].Letter)
	s.Equal(model.Letter('A'), drawn[2].Letter)
	s.Equal(97, bag.Len())
	for _, t := range bag.Tiles {
		s.NotEqual(model.Letter('B'), t.Letter)
	}
}

func (s *ServiceSuite) TestDrawAssignsUniqueIDs() {
	bag := s.service.NewBag()

	drawn := s.service.Draw(&bag, 7)

	seen := map[model.TileID]bool{}
	for _, t := range drawn {
		s.False(seen[t.ID])
		seen[t.ID] = true
	}
	s.Equal(model.TileID("tile-1"), drawn[0].ID)
	s.Equal(7, s.ids.Issued())
}

func (s *ServiceSuite) TestDrawMoreThanRemaining() {
	bag := model.TileBag{Tiles: []model.BagTile{{Letter: 'A', Value: 1}, {Letter: 'B', Value: 3}, {Letter: 'C', Value: 3}}}

	drawn := s.service.Draw(&bag, 5)

	s.Len(drawn, 3)
	s.True(bag.IsEmpty())
}

func (s *ServiceSuite) TestDrawFromEmptyBag() {
	bag := model.TileBag{}

	drawn := s.service.Draw(&bag, 7)

	s.NotNil(drawn)
	s.Empty(drawn)
}

func (s *ServiceSuite) TestDrawWholeBagWithRealRandom() {
	service := New(random.New(), s.ids)
	bag := service.NewBag()

	drawn := service.Draw(&bag, TotalTiles)

	s.Len(drawn, TotalTiles)
	s.True(bag.IsEmpty())
}

// Refill tests

func (s *ServiceSuite) TestRefillTopsUpToRackSize() {
	bag := s.service.NewBag()
	rack := s.service.Draw(&bag, 4)

	rack = s.service.Refill(&bag, rack)

	s.Len(rack, model.RackSize)
	s.Equal(TotalTiles-model.RackSize, bag.Len())
}

func (s *ServiceSuite) TestRefillWithShortBag() {
	bag := model.TileBag{Tiles: []model.BagTile{{Letter: 'E', Value: 1}}}
	rack := []model.Tile{{ID: "t1", Letter: 'A', Value: 1}}

	rack = s.service.Refill(&bag, rack)

	s.Len(rack, 2)
	s.True(bag.IsEmpty())
}
