package documentfile

import "context"

type StubRepo struct {
	files  map[int]DocumentFile
	nextID int
}

func NewStubRepo() *StubRepo {
	return &StubRepo{files: map[int]DocumentFile{}, nextID: 1}
}

func (s *StubRepo) Create(_ context.Context, file DocumentFile) (DocumentFile, error) {
	file.ID = s.nextID
	s.nextID++
	s.files[file.ID] = file
	return file, nil
}

func (s *StubRepo) Get(_ context.Context, id int) (DocumentFile, error) {
	file, ok := s.files[id]
	if !ok {
		return DocumentFile{}, ErrNotFound
	}
	return file, nil
}

func (s *StubRepo) GetMeta(ctx context.Context, id int) (DocumentFile, error) {
	file, err := s.Get(ctx, id)
	if err != nil {
		return DocumentFile{}, err
	}
	file.Data = nil
	return file, nil
}

func (s *StubRepo) Delete(_ context.Context, id int) error {
	delete(s.files, id)
	return nil
}

func (s *StubRepo) Cleanup() {
	s.files = map[int]DocumentFile{}
	s.nextID = 1
}
