package mirror

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-records/internal/client"
	"github.com/aanand-mishra/student-records/internal/http/handlers/student"
	"github.com/aanand-mishra/student-records/internal/records"
	"github.com/aanand-mishra/student-records/internal/types"
)

// setupAPI runs the real students API over in-memory SQLite and returns
// a client pointed at it.
func setupAPI(t *testing.T) (*client.Client, *httptest.Server) {
	t.Helper()

	store, err := records.OpenStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	mux := http.NewServeMux()
	student.RegisterRoutes(mux, records.NewService(store, nil))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := client.New(srv.URL, 0)
	require.NoError(t, err)
	return c, srv
}

func loaded(t *testing.T, api API) *Collection {
	t.Helper()
	col := New(api)
	require.NoError(t, col.Load(context.Background()))
	return col
}

func yes(types.Student) bool { return true }

// fakeAPI answers from canned values and counts calls.
type fakeAPI struct {
	list    []types.Student
	created types.Student
	updated types.Student
	err     error
	calls   int
}

func (f *fakeAPI) List(context.Context) ([]types.Student, error) {
	f.calls++
	return f.list, f.err
}

func (f *fakeAPI) Create(context.Context, client.Candidate) (types.Student, error) {
	f.calls++
	return f.created, f.err
}

func (f *fakeAPI) Update(context.Context, int64, client.Candidate) (types.Student, error) {
	f.calls++
	return f.updated, f.err
}

func (f *fakeAPI) Delete(context.Context, int64) error {
	f.calls++
	return f.err
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	api, _ := setupAPI(t)

	_, err := api.Create(ctx, client.Candidate{Name: "An", Age: 10, Class: "5A"})
	require.NoError(t, err)

	col := New(api)
	assert.Equal(t, Loading, col.State())

	require.NoError(t, col.Load(ctx))
	assert.Equal(t, Loaded, col.State())
	assert.Empty(t, col.Err())
	require.Len(t, col.Students(), 1)
	assert.Equal(t, "An", col.Students()[0].Name)
}

func TestLoadFailure(t *testing.T) {
	ctx := context.Background()
	api, srv := setupAPI(t)

	col := loaded(t, api)
	_, err := col.SubmitCreate(ctx, FormInput{Name: "An", Age: "10", Class: "5A"})
	require.NoError(t, err)
	before := col.Students()

	srv.Close()
	err = col.Load(ctx)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, Failed, col.State())
	assert.Equal(t, client.FallbackMessage, col.Err())
	assert.Equal(t, before, col.Students())
}

func TestSubmitCreateUsesServerRecord(t *testing.T) {
	ctx := context.Background()
	api, _ := setupAPI(t)
	col := loaded(t, api)

	first, err := col.SubmitCreate(ctx, FormInput{Name: "An", Age: "10", Class: "5A"})
	require.NoError(t, err)
	second, err := col.SubmitCreate(ctx, FormInput{Name: " Binh ", Age: " 11", Class: "5B"})
	require.NoError(t, err)

	assert.NotZero(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "Binh", second.Name)
	assert.Equal(t, []types.Student{second, first}, col.Students(), "newest first")

	// The mirror matches what a fresh load would produce, modulo order.
	fresh := loaded(t, api)
	assert.ElementsMatch(t, fresh.Students(), col.Students())
}

func TestSubmitCreateTakesReturnedFields(t *testing.T) {
	api := &fakeAPI{created: types.Student{ID: 7, Name: "AN", Age: 10, Class: "5A"}}
	col := loaded(t, api)

	got, err := col.SubmitCreate(context.Background(), FormInput{Name: "an", Age: "10", Class: "5a"})
	require.NoError(t, err)

	assert.Equal(t, api.created, got)
	assert.Equal(t, []types.Student{api.created}, col.Students())
}

func TestSubmitCreatePrecheck(t *testing.T) {
	api := &fakeAPI{}
	col := loaded(t, api)
	calls := api.calls

	_, err := col.SubmitCreate(context.Background(), FormInput{Name: "An", Age: "", Class: "5A"})
	assert.ErrorIs(t, err, ErrIncompleteForm)

	_, err = col.SubmitCreate(context.Background(), FormInput{Name: "An", Age: "ten", Class: "5A"})
	assert.ErrorIs(t, err, ErrAgeNotNumeric)

	assert.Equal(t, calls, api.calls, "no request may be sent")
	assert.Empty(t, col.Students())
}

func TestSubmitCreateServerRejects(t *testing.T) {
	api, _ := setupAPI(t)
	col := loaded(t, api)

	// Passes the local pre-check but not the server's rules.
	_, err := col.SubmitCreate(context.Background(), FormInput{Name: "An", Age: "0", Class: "5A"})

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "error adding student: field age is required", err.Error())
	assert.Empty(t, col.Students())
}

func TestSubmitUpdate(t *testing.T) {
	ctx := context.Background()
	api, _ := setupAPI(t)
	col := loaded(t, api)

	an, err := col.SubmitCreate(ctx, FormInput{Name: "An", Age: "10", Class: "5A"})
	require.NoError(t, err)
	binh, err := col.SubmitCreate(ctx, FormInput{Name: "Binh", Age: "11", Class: "5B"})
	require.NoError(t, err)

	require.NoError(t, col.BeginEdit(an.ID))
	form, ok := col.FormFor(an.ID)
	require.True(t, ok)
	assert.Equal(t, FormInput{Name: "An", Age: "10", Class: "5A"}, form)

	form.Name = "An Nguyen"
	form.Age = "11"
	updated, err := col.SubmitUpdate(ctx, an.ID, form)
	require.NoError(t, err)

	assert.Equal(t, types.Student{ID: an.ID, Name: "An Nguyen", Age: 11, Class: "5A"}, updated)
	assert.Equal(t, []types.Student{binh, updated}, col.Students(), "replaced in place")
	_, editing := col.Editing()
	assert.False(t, editing)
}

func TestSubmitUpdateFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	api, _ := setupAPI(t)
	col := loaded(t, api)

	an, err := col.SubmitCreate(ctx, FormInput{Name: "An", Age: "10", Class: "5A"})
	require.NoError(t, err)
	require.NoError(t, col.BeginEdit(an.ID))

	// Someone else deletes the record behind our back.
	require.NoError(t, api.Delete(ctx, an.ID))

	before := col.Students()
	_, err = col.SubmitUpdate(ctx, an.ID, FormInput{Name: "X", Age: "1", Class: "1A"})

	require.Error(t, err)
	assert.True(t, client.IsNotFound(err))
	assert.Equal(t, before, col.Students())
	id, editing := col.Editing()
	assert.True(t, editing)
	assert.Equal(t, an.ID, id)
}

func TestSubmitDelete(t *testing.T) {
	ctx := context.Background()
	api, _ := setupAPI(t)
	col := loaded(t, api)

	an, err := col.SubmitCreate(ctx, FormInput{Name: "An", Age: "10", Class: "5A"})
	require.NoError(t, err)

	t.Run("declined", func(t *testing.T) {
		var asked types.Student
		err := col.SubmitDelete(ctx, an.ID, func(s types.Student) bool {
			asked = s
			return false
		})
		assert.ErrorIs(t, err, ErrDeleteCancelled)
		assert.Equal(t, an, asked)
		assert.Len(t, col.Students(), 1)
		assert.Len(t, loaded(t, api).Students(), 1, "server untouched")
	})

	t.Run("nil confirm counts as declined", func(t *testing.T) {
		assert.ErrorIs(t, col.SubmitDelete(ctx, an.ID, nil), ErrDeleteCancelled)
	})

	t.Run("unknown id", func(t *testing.T) {
		assert.ErrorIs(t, col.SubmitDelete(ctx, 999, yes), ErrUnknownStudent)
	})

	t.Run("confirmed", func(t *testing.T) {
		require.NoError(t, col.SubmitDelete(ctx, an.ID, yes))
		assert.Empty(t, col.Students())
		assert.Empty(t, loaded(t, api).Students())
	})
}

func TestSubmitDeleteFailureKeepsMirror(t *testing.T) {
	api := &fakeAPI{list: []types.Student{{ID: 1, Name: "An", Age: 10, Class: "5A"}}}
	col := loaded(t, api)

	api.err = &client.APIError{Status: http.StatusInternalServerError, Message: "server error while deleting student"}
	err := col.SubmitDelete(context.Background(), 1, yes)

	require.Error(t, err)
	assert.Equal(t, "error deleting student: server error while deleting student", err.Error())
	assert.Equal(t, api.list, col.Students())
}

func TestTransportFailureMessage(t *testing.T) {
	api := &fakeAPI{}
	col := loaded(t, api)

	api.err = &client.TransportError{Op: "create student", Err: errors.New("connection refused")}
	_, err := col.SubmitCreate(context.Background(), FormInput{Name: "An", Age: "10", Class: "5A"})

	assert.Equal(t, "error adding student: "+client.FallbackMessage, err.Error())
	assert.Empty(t, col.Students())
}

func TestDerive(t *testing.T) {
	students := []types.Student{
		{ID: 1, Name: "binh", Age: 11, Class: "5B"},
		{ID: 2, Name: "An", Age: 10, Class: "5A"},
		{ID: 3, Name: "Chi", Age: 12, Class: "5C"},
		{ID: 4, Name: "an", Age: 9, Class: "4A"},
		{ID: 5, Name: "Anh", Age: 10, Class: "5A"},
	}
	col := loaded(t, &fakeAPI{list: students})

	names := func(view []types.Student) []string {
		out := make([]string, len(view))
		for i, s := range view {
			out[i] = s.Name
		}
		return out
	}

	t.Run("ascending", func(t *testing.T) {
		assert.Equal(t, []string{"An", "an", "Anh", "binh", "Chi"}, names(col.Derive("", true)))
	})

	t.Run("descending", func(t *testing.T) {
		assert.Equal(t, []string{"Chi", "binh", "Anh", "An", "an"}, names(col.Derive("", false)))
	})

	t.Run("filter ignores case", func(t *testing.T) {
		assert.Equal(t, []string{"An", "an", "Anh"}, names(col.Derive("AN", true)))
		assert.Equal(t, []string{"Chi", "binh", "Anh"}, names(col.Derive("h", false)))
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, col.Derive("zz", true))
	})

	t.Run("pure", func(t *testing.T) {
		first := col.Derive("n", false)
		second := col.Derive("n", false)
		assert.Equal(t, first, second)
		assert.Equal(t, students, col.Students(), "mirror order and contents unchanged")

		first[0].Name = "mutated"
		assert.Equal(t, students, col.Students(), "view does not alias the mirror")
	})
}

func TestDeriveMakesNoRequests(t *testing.T) {
	api := &fakeAPI{list: []types.Student{{ID: 1, Name: "An", Age: 10, Class: "5A"}}}
	col := loaded(t, api)
	calls := api.calls

	col.Derive("a", true)
	col.Derive("", false)

	assert.Equal(t, calls, api.calls)
}

func TestEditMode(t *testing.T) {
	api := &fakeAPI{list: []types.Student{
		{ID: 1, Name: "An", Age: 10, Class: "5A"},
		{ID: 2, Name: "Binh", Age: 11, Class: "5B"},
	}}
	col := loaded(t, api)

	_, editing := col.Editing()
	assert.False(t, editing, "starts viewing")

	assert.ErrorIs(t, col.BeginEdit(99), ErrUnknownStudent)

	require.NoError(t, col.BeginEdit(1))
	require.NoError(t, col.BeginEdit(2))
	id, editing := col.Editing()
	assert.True(t, editing)
	assert.Equal(t, int64(2), id, "only one record in edit mode")

	col.CancelEdit()
	_, editing = col.Editing()
	assert.False(t, editing)

	// A reload that drops the edited record leaves edit mode.
	require.NoError(t, col.BeginEdit(2))
	api.list = api.list[:1]
	require.NoError(t, col.Load(context.Background()))
	_, editing = col.Editing()
	assert.False(t, editing)
}

func TestFormCandidate(t *testing.T) {
	got, err := FormInput{Name: " An ", Age: "10", Class: "5A "}.Candidate()
	require.NoError(t, err)
	assert.Equal(t, client.Candidate{Name: "An", Age: 10, Class: "5A"}, got)

	_, err = FormInput{Name: "   ", Age: "10", Class: "5A"}.Candidate()
	assert.ErrorIs(t, err, ErrIncompleteForm)

	_, err = FormInput{Name: "An", Age: "10.5", Class: "5A"}.Candidate()
	assert.ErrorIs(t, err, ErrAgeNotNumeric)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "loading", Loading.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "loaded", Loaded.String())
}
