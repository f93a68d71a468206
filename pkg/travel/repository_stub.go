package travel

import (
	"context"
)

type StubRepo struct {
	nextId int
	data   map[int]Travel
}

func NewStubRepo() *StubRepo {
	return &StubRepo{nextId: 0, data: map[int]Travel{}}
}

func (s *StubRepo) Create(ctx context.Context, travel Travel) (int, error) {
	s.nextId++
	travel.ID = s.nextId
	s.data[travel.ID] = travel
	return travel.ID, nil
}

func (s *StubRepo) Get(ctx context.Context, id int) (Travel, error) {
	travel, ok := s.data[id]
	if !ok {
		return Travel{}, ErrTravelNotFound
	}
	return travel, nil
}

func (s *StubRepo) GetAll(ctx context.Context, travelerId int) ([]Travel, error) {
	var travels []Travel
	for _, travel := range s.data {
		if travel.Historic {
			continue
		}
		if travelerId != 0 && travel.TravelerID != travelerId {
			continue
		}
		travels = append(travels, travel)
	}
	return travels, nil
}

func (s *StubRepo) Update(ctx context.Context, travel Travel) error {
	if _, ok := s.data[travel.ID]; !ok {
		return ErrTravelNotFound
	}
	s.data[travel.ID] = travel
	return nil
}

func (s *StubRepo) Delete(ctx context.Context, id int) error {
	if _, ok := s.data[id]; !ok {
		return ErrTravelNotFound
	}
	delete(s.data, id)
	return nil
}

func (s *StubRepo) Cleanup() {
	s.data = map[int]Travel{}
}
