package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/dsimmons122/employee-management/internal/directory"
	"github.com/dsimmons122/employee-management/internal/directory/mocks"
	"github.com/dsimmons122/employee-management/internal/store"
	"github.com/dsimmons122/employee-management/internal/store/inmemory"
)

func TestDirectoryTaskFullPass(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	s := inmemory.New()
	ctx := context.Background()

	lastSignIn := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)
	client := mocks.NewMockClient(ctrl)
	client.EXPECT().ListPeople(gomock.Any()).Return([]directory.Person{
		{ID: "p-alice", DisplayName: "Alice", Email: "alice@example.test", Active: true},
		{ID: "p-bob", DisplayName: "Bob", Active: false, LastSignInAt: &lastSignIn},
	}, nil)
	client.EXPECT().ListDevicesForPerson(gomock.Any(), "p-alice").Return([]directory.DeviceRegistration{
		{ID: "reg-1", DisplayName: "atl-HKXRGK2", Platform: "windows",
			RegisteredDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Active: true},
	}, nil)
	client.EXPECT().ListDevicesForPerson(gomock.Any(), "p-bob").Return(nil, nil)

	task := NewDirectoryTask(s, client, nil)
	var started uuid.UUID
	run, err := task.Run(ctx, func(id uuid.UUID) { started = id })
	require.NoError(t, err)
	assert.Equal(t, started, run.ID)
	assert.Equal(t, store.RunStatusSuccess, run.Status)
	assert.Equal(t, int64(3), run.RecordsSynced)
	assert.Zero(t, run.RecordsFailed)
	require.NotNil(t, run.CompletedAt)

	alice, err := s.GetEmployeeByExternalID(ctx, "p-alice")
	require.NoError(t, err)
	assert.Equal(t, store.EmploymentStatusActive, alice.EmploymentStatus)
	assert.Nil(t, alice.TerminationDate)
	require.NotNil(t, alice.Email)
	assert.Equal(t, "alice@example.test", *alice.Email)

	bob, err := s.GetEmployeeByExternalID(ctx, "p-bob")
	require.NoError(t, err)
	assert.Equal(t, store.EmploymentStatusTerminated, bob.EmploymentStatus)
	require.NotNil(t, bob.TerminationDate)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), *bob.TerminationDate)

	dev, err := s.GetDeviceByDirectoryID(ctx, "reg-1")
	require.NoError(t, err)
	assert.Equal(t, "HKXRGK2", dev.SerialNumber)
	require.NotNil(t, dev.EmployeeID)
	assert.Equal(t, alice.ID, *dev.EmployeeID)
}

func TestDirectoryTaskTerminationDateFallsBackToToday(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	s := inmemory.New()
	ctx := context.Background()

	client := mocks.NewMockClient(ctrl)
	client.EXPECT().ListPeople(gomock.Any()).Return([]directory.Person{
		{ID: "p-1", DisplayName: "No Sign-ins", Active: false},
	}, nil)
	client.EXPECT().ListDevicesForPerson(gomock.Any(), "p-1").Return(nil, nil)

	_, err := NewDirectoryTask(s, client, nil).Run(ctx, nil)
	require.NoError(t, err)

	emp, err := s.GetEmployeeByExternalID(ctx, "p-1")
	require.NoError(t, err)
	require.NotNil(t, emp.TerminationDate)
	assert.Equal(t, truncateToDay(time.Now().UTC()), *emp.TerminationDate)
}

func TestDirectoryTaskTerminationDateIsSticky(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	s := inmemory.New()
	ctx := context.Background()

	original := time.Date(2023, 11, 2, 0, 0, 0, 0, time.UTC)
	_, err := s.UpsertEmployee(ctx, store.Employee{
		ExternalID:       "p-1",
		DisplayName:      "Terminated Earlier",
		EmploymentStatus: store.EmploymentStatusTerminated,
		TerminationDate:  &original,
	})
	require.NoError(t, err)

	recentSignIn := time.Date(2024, 5, 5, 9, 0, 0, 0, time.UTC)
	client := mocks.NewMockClient(ctrl)
	client.EXPECT().ListPeople(gomock.Any()).Return([]directory.Person{
		{ID: "p-1", DisplayName: "Terminated Earlier", Active: false, LastSignInAt: &recentSignIn},
	}, nil)
	client.EXPECT().ListDevicesForPerson(gomock.Any(), "p-1").Return(nil, nil)

	_, err = NewDirectoryTask(s, client, nil).Run(ctx, nil)
	require.NoError(t, err)

	emp, err := s.GetEmployeeByExternalID(ctx, "p-1")
	require.NoError(t, err)
	require.NotNil(t, emp.TerminationDate)
	assert.Equal(t, original, *emp.TerminationDate)
}

func TestDirectoryTaskDedupesRegistrationsBySerial(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	s := inmemory.New()
	ctx := context.Background()

	client := mocks.NewMockClient(ctrl)
	client.EXPECT().ListPeople(gomock.Any()).Return([]directory.Person{
		{ID: "p-1", DisplayName: "Alice", Active: true},
	}, nil)
	// Two registrations of the same physical machine: the stale inactive
	// one and the active re-registration.
	client.EXPECT().ListDevicesForPerson(gomock.Any(), "p-1").Return([]directory.DeviceRegistration{
		{ID: "reg-old", DisplayName: "atl-HKXRGK2",
			RegisteredDate: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), Active: false},
		{ID: "reg-new", DisplayName: "nyc-HKXRGK2",
			RegisteredDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Active: true},
	}, nil)

	run, err := NewDirectoryTask(s, client, nil).Run(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, store.RunStatusSuccess, run.Status)

	devices, err := s.ListDevicesBySerial(ctx, "HKXRGK2")
	require.NoError(t, err)
	require.Len(t, devices, 1)
	require.NotNil(t, devices[0].DirectoryDeviceID)
	assert.Equal(t, "reg-new", *devices[0].DirectoryDeviceID)
}

func TestDirectoryTaskUnreachableSourceFailsRun(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	s := inmemory.New()

	client := mocks.NewMockClient(ctrl)
	client.EXPECT().ListPeople(gomock.Any()).Return(nil, errors.New("connection refused"))

	run, err := NewDirectoryTask(s, client, nil).Run(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, store.RunStatusFailed, run.Status)
	require.NotNil(t, run.CompletedAt)
	require.NotNil(t, run.ErrorMessage)
	assert.Contains(t, *run.ErrorMessage, "directory unreachable")
}

func TestDirectoryTaskPartialOnPersonFailure(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	s := inmemory.New()

	client := mocks.NewMockClient(ctrl)
	client.EXPECT().ListPeople(gomock.Any()).Return([]directory.Person{
		{ID: "p-1", DisplayName: "Alice", Active: true},
		{ID: "p-2", DisplayName: "Bob", Active: true},
	}, nil)
	client.EXPECT().ListDevicesForPerson(gomock.Any(), "p-1").
		Return(nil, errors.New("upstream 503"))
	client.EXPECT().ListDevicesForPerson(gomock.Any(), "p-2").Return(nil, nil)

	run, err := NewDirectoryTask(s, client, nil).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, store.RunStatusPartial, run.Status)
	assert.Equal(t, int64(2), run.RecordsSynced)
	assert.Equal(t, int64(1), run.RecordsFailed)
	require.NotNil(t, run.ErrorMessage)
	assert.Contains(t, *run.ErrorMessage, "p-1")
}

func TestDirectoryTaskRerunIsIdempotent(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	s := inmemory.New()
	ctx := context.Background()

	people := []directory.Person{{ID: "p-1", DisplayName: "Alice", Active: true}}
	regs := []directory.DeviceRegistration{
		{ID: "reg-1", DisplayName: "atl-AAA111",
			RegisteredDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Active: true},
	}

	client := mocks.NewMockClient(ctrl)
	client.EXPECT().ListPeople(gomock.Any()).Return(people, nil).Times(2)
	client.EXPECT().ListDevicesForPerson(gomock.Any(), "p-1").Return(regs, nil).Times(2)

	task := NewDirectoryTask(s, client, nil)
	for i := 0; i < 2; i++ {
		run, err := task.Run(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, store.RunStatusSuccess, run.Status)
		assert.Zero(t, run.RecordsFailed)
	}

	dev, err := s.GetDeviceByDirectoryID(ctx, "reg-1")
	require.NoError(t, err)
	history, err := s.ListAssignmentsForDevice(ctx, dev.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	devices, err := s.ListDevices(ctx, 100, 0)
	require.NoError(t, err)
	assert.Len(t, devices, 1)
}
