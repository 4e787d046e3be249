package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"task_manager/internal/models"
	"task_manager/internal/repository"
)

// fakeTaskRepo keeps tasks in insertion order per user.
type fakeTaskRepo struct {
	tasks  map[int][]models.Task
	nextID int
	err    error
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[int][]models.Task)}
}

func (f *fakeTaskRepo) ListByUser(_ context.Context, userID int) ([]models.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.Task(nil), f.tasks[userID]...), nil
}

func (f *fakeTaskRepo) Create(_ context.Context, userID int, text string, createdAt time.Time) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.nextID++
	f.tasks[userID] = append(f.tasks[userID], models.Task{ID: f.nextID, UserID: userID, Text: text, CreatedAt: createdAt})
	return f.nextID, nil
}

func (f *fakeTaskRepo) DeleteAt(_ context.Context, userID, index int) error {
	if f.err != nil {
		return f.err
	}
	list := f.tasks[userID]
	if index < 0 || index >= len(list) {
		return repository.ErrIndexOutOfRange
	}
	f.tasks[userID] = append(list[:index:index], list[index+1:]...)
	return nil
}

func TestTaskService_AddTrimsAndLists(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := NewTaskService(repo)
	ctx := context.Background()

	for _, text := range []string{"  buy milk ", "call mom"} {
		if err := svc.Add(ctx, 1, text); err != nil {
			t.Fatalf("Add(%q): %v", text, err)
		}
	}

	got, err := svc.List(ctx, 1)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0] != "buy milk" || got[1] != "call mom" {
		t.Fatalf("unexpected list %q", got)
	}
}

func TestTaskService_ListEmptyIsNotNil(t *testing.T) {
	svc := NewTaskService(newFakeTaskRepo())
	got, err := svc.List(context.Background(), 99)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestTaskService_AddBlank(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := NewTaskService(repo)

	for _, text := range []string{"", "   ", "\t\n"} {
		err := svc.Add(context.Background(), 1, text)
		if !errors.Is(err, ErrEmptyTask) {
			t.Fatalf("Add(%q): expected ErrEmptyTask, got %v", text, err)
		}
	}
	if len(repo.tasks[1]) != 0 {
		t.Fatalf("blank tasks must not be stored")
	}
}

func TestTaskService_DeleteAt(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := NewTaskService(repo)
	ctx := context.Background()
	for _, text := range []string{"a", "b", "c"} {
		if err := svc.Add(ctx, 1, text); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	if err := svc.DeleteAt(ctx, 1, 1); err != nil {
		t.Fatalf("DeleteAt: %v", err)
	}
	got, _ := svc.List(ctx, 1)
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Fatalf("unexpected list after delete %q", got)
	}

	for _, idx := range []int{-1, 2, 10} {
		if err := svc.DeleteAt(ctx, 1, idx); !errors.Is(err, ErrInvalidIndex) {
			t.Fatalf("DeleteAt(%d): expected ErrInvalidIndex, got %v", idx, err)
		}
	}
}

func TestTaskService_DeleteAtIsScopedToUser(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := NewTaskService(repo)
	ctx := context.Background()
	_ = svc.Add(ctx, 1, "mine")

	if err := svc.DeleteAt(ctx, 2, 0); !errors.Is(err, ErrInvalidIndex) {
		t.Fatalf("expected ErrInvalidIndex for another user's position, got %v", err)
	}
	if got, _ := svc.List(ctx, 1); len(got) != 1 {
		t.Fatalf("owner's task must survive, got %q", got)
	}
}

func TestTaskService_StoreErrors(t *testing.T) {
	repo := newFakeTaskRepo()
	repo.err = errors.New("db down")
	svc := NewTaskService(repo)
	ctx := context.Background()

	_, listErr := svc.List(ctx, 1)
	addErr := svc.Add(ctx, 1, "x")
	delErr := svc.DeleteAt(ctx, 1, 0)

	for name, err := range map[string]error{"list": listErr, "add": addErr, "delete": delErr} {
		var se *StoreError
		if !errors.As(err, &se) {
			t.Fatalf("%s: expected StoreError, got %v", name, err)
		}
		if errors.Is(err, ErrValidation) {
			t.Fatalf("%s: store failure must not be a validation error", name)
		}
	}
}
