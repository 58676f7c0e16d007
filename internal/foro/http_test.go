package foro

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aisa-it/foro/internal/foro/backend"
	"github.com/aisa-it/foro/internal/foro/config"
	"github.com/aisa-it/foro/internal/foro/editor"
	filestorage "github.com/aisa-it/foro/internal/foro/file-storage"
)

const helloWorld = `{"blocks":[{"key":"a1b2c","text":"Hello world","type":"unstyled","depth":0,"inlineStyleRanges":[{"offset":0,"length":5,"style":"BOLD"}],"entityRanges":[],"data":{}}],"entityMap":{}}`

type fakeResponse struct {
	status int
	body   string
}

// data оборачивает значение в ответ GraphQL {"data":{field: v}}.
func data(t *testing.T, field string, v any) fakeResponse {
	t.Helper()
	body, err := json.Marshal(map[string]any{"data": map[string]any{field: v}})
	require.NoError(t, err)
	return fakeResponse{status: http.StatusOK, body: string(body)}
}

// fakeForo - поддельный GraphQL API. Ответ выбирается по имени поля в тексте запроса,
// при совпадении нескольких имен побеждает самое длинное.
type fakeForo struct {
	mu        sync.Mutex
	responses map[string]fakeResponse
	variables map[string]map[string]any
	auth      map[string]string
}

func (f *fakeForo) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	fields := make([]string, 0, len(f.responses))
	for field := range f.responses {
		if strings.Contains(req.Query, field) {
			fields = append(fields, field)
		}
	}
	if len(fields) == 0 {
		http.Error(w, "unexpected query: "+req.Query, http.StatusNotImplemented)
		return
	}
	sort.Slice(fields, func(i, j int) bool { return len(fields[i]) > len(fields[j]) })

	field := fields[0]
	f.variables[field] = req.Variables
	f.auth[field] = r.Header.Get(echo.HeaderAuthorization)

	resp := f.responses[field]
	w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	w.WriteHeader(resp.status)
	w.Write([]byte(resp.body))
}

func (f *fakeForo) vars(field string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.variables[field]
}

func (f *fakeForo) authFor(field string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.auth[field]
}

type memoryStorage struct {
	mu    sync.Mutex
	files map[string][]byte
	types map[string]string
}

func (m *memoryStorage) Save(ctx context.Context, file filestorage.File) (string, error) {
	content, err := io.ReadAll(file.Reader)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[file.Name] = content
	m.types[file.Name] = file.ContentType
	return "http://files.test/" + file.Name, nil
}

func (m *memoryStorage) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, name)
	return nil
}

type testServer struct {
	e       *echo.Echo
	api     *fakeForo
	storage *memoryStorage
}

func newTestServer(t *testing.T, responses map[string]fakeResponse) *testServer {
	t.Helper()
	api := &fakeForo{
		responses: responses,
		variables: map[string]map[string]any{},
		auth:      map[string]string{},
	}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	storage := &memoryStorage{files: map[string][]byte{}, types: map[string]string{}}
	cfg := &config.Config{UploadMaxMB: 1, APITimeout: 2 * time.Second}

	s, err := NewServices(cfg, backend.NewClient(srv.URL, cfg.APITimeout), storage)
	require.NoError(t, err)

	return &testServer{
		e:       s.NewRouter("test", prometheus.NewRegistry()),
		api:     api,
		storage: storage,
	}
}

func makeToken(t *testing.T, id, role string, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  id,
		"rol": role,
		"exp": jwt.NewNumericDate(exp),
	}).SignedString([]byte("api-secret"))
	require.NoError(t, err)
	return token
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) int {
	t.Helper()
	var resp struct {
		Code int `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp.Code
}

func samplePost(id, authorID, content string) backend.Post {
	return backend.Post{
		ID:                 id,
		Titulo:             "Hola",
		Contenido:          content,
		Autor:              &backend.User{ID: authorID, Nombre: "Ana", Apellido: "Paz"},
		Categoria:          &backend.Category{ID: "c1", Nombre: "General"},
		PromedioPuntuacion: 4.5,
		NumeroPuntuaciones: 2,
	}
}

func TestHealthAndVersion(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodGet, "/api/_health/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/version", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version":"test"`)
	assert.Equal(t, "Foro", rec.Header().Get(echo.HeaderServer))
}

func TestPostList(t *testing.T) {
	ts := newTestServer(t, map[string]fakeResponse{
		"obtenerPosts": data(t, "obtenerPosts", []backend.Post{
			samplePost("1", "u2", helloWorld),
			samplePost("2", "u2", "not json"),
		}),
	})

	rec := ts.do(t, http.MethodGet, "/api/posts/?categoria=c1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var posts []struct {
		ID      string  `json:"id"`
		Excerpt string  `json:"excerpt"`
		Rating  float64 `json:"rating_avg"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &posts))
	require.Len(t, posts, 2)
	assert.Equal(t, "Hello world", posts[0].Excerpt)
	assert.Equal(t, 4.5, posts[0].Rating)
	assert.Equal(t, "Error al procesar el contenido", posts[1].Excerpt)

	assert.Equal(t, "c1", ts.api.vars("obtenerPosts")["categoriaId"])
	assert.Empty(t, ts.api.authFor("obtenerPosts"))
}

func TestGetPost(t *testing.T) {
	ts := newTestServer(t, map[string]fakeResponse{
		"obtenerPosts": data(t, "obtenerPosts", []backend.Post{
			samplePost("1", "u2", helloWorld),
			samplePost("2", "u2", "not json"),
		}),
	})

	rec := ts.do(t, http.MethodGet, "/api/posts/1/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"html":"<p><strong>Hello</strong> world</p>"`)

	t.Run("malformed", func(t *testing.T) {
		before := testutil.ToFloat64(malformedContentCounter.WithLabelValues("post"))

		rec := ts.do(t, http.MethodGet, "/api/posts/2/", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"html":"<p>Error al procesar el contenido</p>"`)
		assert.Contains(t, rec.Body.String(), `"malformed":true`)

		assert.Equal(t, before+1, testutil.ToFloat64(malformedContentCounter.WithLabelValues("post")))
	})

	t.Run("not found", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/posts/3/", "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, 2001, errorCode(t, rec))
	})

	t.Run("invalid id", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/posts/a.b/", "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, 5004, errorCode(t, rec))
	})
}

func TestCreatePost(t *testing.T) {
	ts := newTestServer(t, map[string]fakeResponse{
		"crearPost": data(t, "crearPost", samplePost("9", "u1", helloWorld)),
	})
	token := makeToken(t, "u1", backend.RoleUser, time.Now().Add(time.Hour))

	t.Run("requires token", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/posts/", "", map[string]any{"title": "Título", "content": helloWorld, "category_id": "c1"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, 1003, errorCode(t, rec))
	})

	t.Run("normalizes content", func(t *testing.T) {
		content := `{"blocks":[{"key":"k1","text":"Hi","type":"unstyled","depth":0,"inlineStyleRanges":[{"offset":0,"length":2,"style":"CODE"},{"offset":0,"length":1,"style":"BOLD"}],"entityRanges":[{"offset":0,"length":1,"key":0}],"data":{"a":1}}],"entityMap":{"0":{"type":"LINK"}}}`
		rec := ts.do(t, http.MethodPost, "/api/posts/", token, map[string]any{"title": "Título", "content": content, "category_id": "c1"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		input, ok := ts.api.vars("crearPost")["input"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t,
			`{"blocks":[{"key":"k1","text":"Hi","type":"unstyled","depth":0,"inlineStyleRanges":[{"offset":0,"length":1,"style":"BOLD"}],"entityRanges":[],"data":{}}],"entityMap":{}}`,
			input["contenido"])
		assert.Equal(t, "c1", input["categoriaId"])
		assert.Equal(t, "Bearer "+token, ts.api.authFor("crearPost"))
	})

	t.Run("malformed content", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/posts/", token, map[string]any{"title": "Título", "content": `{"blocks":5}`, "category_id": "c1"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, 3001, errorCode(t, rec))
	})

	t.Run("empty content", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/posts/", token, map[string]any{"title": "Título", "content": `{"blocks":[{"text":"  "}]}`, "category_id": "c1"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, 3002, errorCode(t, rec))
	})

	t.Run("short title", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/posts/", token, map[string]any{"title": "a", "content": helloWorld, "category_id": "c1"})
		assert.Equal(t, 2002, errorCode(t, rec))
	})
}

func TestUpdatePost(t *testing.T) {
	ts := newTestServer(t, map[string]fakeResponse{
		"obtenerPosts":   data(t, "obtenerPosts", []backend.Post{samplePost("1", "u2", helloWorld)}),
		"actualizarPost": data(t, "actualizarPost", backend.Post{ID: "1", Titulo: "Nuevo", Contenido: helloWorld}),
	})

	t.Run("not author", func(t *testing.T) {
		token := makeToken(t, "u1", backend.RoleUser, time.Now().Add(time.Hour))
		rec := ts.do(t, http.MethodPatch, "/api/posts/1/", token, map[string]any{"title": "Nuevo"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, 2003, errorCode(t, rec))
	})

	t.Run("author", func(t *testing.T) {
		token := makeToken(t, "u2", backend.RoleUser, time.Now().Add(time.Hour))
		rec := ts.do(t, http.MethodPatch, "/api/posts/1/", token, map[string]any{"title": "Nuevo"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), `"title":"Nuevo"`)
		assert.Contains(t, rec.Body.String(), `"first_name":"Ana"`)

		input := ts.api.vars("actualizarPost")["input"].(map[string]any)
		assert.Equal(t, "Nuevo", input["titulo"])
		assert.NotContains(t, input, "contenido")
	})

	t.Run("admin", func(t *testing.T) {
		token := makeToken(t, "u9", backend.RoleAdmin, time.Now().Add(time.Hour))
		rec := ts.do(t, http.MethodPatch, "/api/posts/1/", token, map[string]any{"content": "texto"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		input := ts.api.vars("actualizarPost")["input"].(map[string]any)
		doc, err := editor.Decode(input["contenido"].(string))
		require.NoError(t, err)
		assert.Equal(t, "texto", doc.PlainText())
	})
}

func TestTokens(t *testing.T) {
	ts := newTestServer(t, map[string]fakeResponse{
		"obtenerNotificaciones": data(t, "obtenerNotificaciones", []backend.Notification{{ID: "n1", Mensaje: "Hola"}}),
		"obtenerCategorias":     data(t, "obtenerCategorias", []backend.Category{{ID: "c1", Nombre: "General"}}),
	})
	expired := makeToken(t, "u1", backend.RoleUser, time.Now().Add(-time.Minute))

	rec := ts.do(t, http.MethodGet, "/api/notifications/", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 1005, errorCode(t, rec))

	rec = ts.do(t, http.MethodGet, "/api/notifications/", "garbage", nil)
	assert.Equal(t, 1004, errorCode(t, rec))

	// публичные маршруты работают и с просроченным токеном
	rec = ts.do(t, http.MethodGet, "/api/categories/", expired, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":"c1","name":"General"}]`, rec.Body.String())

	t.Run("cookie", func(t *testing.T) {
		token := makeToken(t, "u1", backend.RoleUser, time.Now().Add(time.Hour))
		req := httptest.NewRequest(http.MethodGet, "/api/notifications/", nil)
		req.AddCookie(&http.Cookie{Name: tokenCookieName, Value: token})
		rec := httptest.NewRecorder()
		ts.e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Bearer "+token, ts.api.authFor("obtenerNotificaciones"))
		assert.JSONEq(t, `[{"id":"n1","message":"Hola","read":false}]`, rec.Body.String())
	})
}

func TestParseSessionUser(t *testing.T) {
	now := time.Now()
	user, err := parseSessionUser(makeToken(t, "u1", backend.RoleAdmin, now.Add(time.Hour)), now)
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.True(t, user.IsAdmin())

	_, err = parseSessionUser(makeToken(t, "u1", "", now.Add(-time.Hour)), now)
	assert.ErrorIs(t, err, errTokenExpired)

	noID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"rol": "x"}).SignedString([]byte("k"))
	require.NoError(t, err)
	_, err = parseSessionUser(noID, now)
	assert.Error(t, err)
}

func TestLogin(t *testing.T) {
	token := makeToken(t, "u1", backend.RoleUser, time.Now().Add(time.Hour))
	ts := newTestServer(t, map[string]fakeResponse{
		"autenticarUsuario": data(t, "autenticarUsuario", map[string]string{"token": token}),
		"obtenerUsuario":    data(t, "obtenerUsuario", backend.User{ID: "u1", Nombre: "Ana", Rol: backend.RoleUser}),
	})

	rec := ts.do(t, http.MethodPost, "/api/auth/login/", "", map[string]string{"email": "ana@foro.test", "password": "secret"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"token":"`+token+`"`)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), tokenCookieName+"="+token)

	rec = ts.do(t, http.MethodPost, "/api/auth/login/", "", map[string]string{"email": "ana@foro.test"})
	assert.Equal(t, 1002, errorCode(t, rec))

	t.Run("rejected", func(t *testing.T) {
		ts := newTestServer(t, map[string]fakeResponse{
			"autenticarUsuario": {status: http.StatusOK, body: `{"data":null,"errors":[{"message":"Contraseña incorrecta"}]}`},
		})
		rec := ts.do(t, http.MethodPost, "/api/auth/login/", "", map[string]string{"email": "ana@foro.test", "password": "bad"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, 1001, errorCode(t, rec))
	})
}

func TestComments(t *testing.T) {
	ts := newTestServer(t, map[string]fakeResponse{
		"obtenerComentarioPorPost": data(t, "obtenerComentarioPorPost", []backend.Comment{
			{ID: "m1", Contenido: "texto <b>plano</b>"},
			{ID: "m2", Contenido: helloWorld},
		}),
		"crearComentario": data(t, "crearComentario", backend.Comment{ID: "m3", Contenido: "hola"}),
	})

	rec := ts.do(t, http.MethodGet, "/api/posts/1/comments/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"html":"<p>texto &lt;b&gt;plano&lt;/b&gt;</p>"`)
	assert.Contains(t, rec.Body.String(), `"html":"<p><strong>Hello</strong> world</p>"`)

	token := makeToken(t, "u1", backend.RoleUser, time.Now().Add(time.Hour))
	rec = ts.do(t, http.MethodPost, "/api/posts/1/comments/", token, map[string]string{"content": "hola"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	input := ts.api.vars("crearComentario")["input"].(map[string]any)
	assert.Equal(t, "1", input["postId"])
	assert.Equal(t, "u1", input["autorId"])
	doc, err := editor.Decode(input["contenido"].(string))
	require.NoError(t, err)
	assert.Equal(t, "hola", doc.PlainText())
}

func TestRatings(t *testing.T) {
	ts := newTestServer(t, map[string]fakeResponse{
		"obtenerPuntuacionesPorPublicacion": data(t, "obtenerPuntuacionesPorPublicacion", []backend.Rating{
			{ID: "r1", Puntuacion: 5}, {ID: "r2", Puntuacion: 4}, {ID: "r3", Puntuacion: 4},
		}),
		"crearPuntuacion": data(t, "crearPuntuacion", backend.Rating{ID: "r4", Puntuacion: 3}),
	})

	rec := ts.do(t, http.MethodGet, "/api/posts/1/ratings/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"average":4.33`)
	assert.Contains(t, rec.Body.String(), `"count":3`)

	token := makeToken(t, "u1", backend.RoleUser, time.Now().Add(time.Hour))
	rec = ts.do(t, http.MethodPost, "/api/posts/1/ratings/", token, map[string]int{"value": 7})
	assert.Equal(t, 2006, errorCode(t, rec))

	rec = ts.do(t, http.MethodPost, "/api/posts/1/ratings/", token, map[string]int{"value": 3})
	require.Equal(t, http.StatusCreated, rec.Code)
	input := ts.api.vars("crearPuntuacion")["input"].(map[string]any)
	assert.Equal(t, float64(3), input["puntuacion"])
}

func TestAdmin(t *testing.T) {
	t.Run("not admin", func(t *testing.T) {
		ts := newTestServer(t, map[string]fakeResponse{
			"obtenerUsuario": data(t, "obtenerUsuario", backend.User{ID: "u1", Rol: backend.RoleUser}),
		})
		// роль в токене не имеет значения, решает API
		token := makeToken(t, "u1", backend.RoleAdmin, time.Now().Add(time.Hour))
		rec := ts.do(t, http.MethodGet, "/api/admin/reports/", token, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, 1007, errorCode(t, rec))
	})

	t.Run("admin", func(t *testing.T) {
		ts := newTestServer(t, map[string]fakeResponse{
			"obtenerUsuario": data(t, "obtenerUsuario", backend.User{ID: "u1", Rol: backend.RoleAdmin}),
			"obtenerReportes": data(t, "obtenerReportes", []backend.Report{{
				ID:          "rep1",
				Motivo:      "spam",
				Estado:      backend.ReportPending,
				Publicacion: &backend.Post{ID: "1", Titulo: "Hola", Contenido: helloWorld},
			}}),
			"actualizarEstadoReporte": data(t, "actualizarEstadoReporte", backend.Result{Success: true}),
		})
		token := makeToken(t, "u1", backend.RoleUser, time.Now().Add(time.Hour))

		rec := ts.do(t, http.MethodGet, "/api/admin/reports/", token, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), `"excerpt":"Hello world"`)

		rec = ts.do(t, http.MethodPost, "/api/admin/reports/rep1/status/", token, map[string]string{"status": "BORRADO"})
		assert.Equal(t, 2007, errorCode(t, rec))

		rec = ts.do(t, http.MethodPost, "/api/admin/reports/rep1/status/", token, map[string]string{"status": backend.ReportApproved})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, backend.ReportApproved, ts.api.vars("actualizarEstadoReporte")["estado"])
	})
}

func TestAdminCategories(t *testing.T) {
	ts := newTestServer(t, map[string]fakeResponse{
		"obtenerUsuario":      data(t, "obtenerUsuario", backend.User{ID: "u1", Rol: backend.RoleAdmin}),
		"crearCategoria":      data(t, "crearCategoria", backend.Category{ID: "c9", Nombre: "Ayuda", Descripcion: "Preguntas"}),
		"actualizarCategoria": data(t, "actualizarCategoria", backend.Category{ID: "c9", Nombre: "Soporte", Descripcion: "Preguntas"}),
		"eliminarCategoria":   data(t, "eliminarCategoria", true),
	})
	token := makeToken(t, "u1", backend.RoleUser, time.Now().Add(time.Hour))

	rec := ts.do(t, http.MethodPost, "/api/admin/categories/", token, map[string]string{"name": " Ayuda ", "description": "Preguntas"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"id":"c9"`)
	assert.Equal(t, map[string]any{"nombre": "Ayuda", "descripcion": "Preguntas"}, ts.api.vars("crearCategoria")["input"])

	rec = ts.do(t, http.MethodPatch, "/api/admin/categories/c9/", token, map[string]string{"name": "Soporte", "description": "Preguntas"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"name":"Soporte"`)
	assert.Equal(t, "c9", ts.api.vars("actualizarCategoria")["id"])

	rec = ts.do(t, http.MethodDelete, "/api/admin/categories/c9/", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "c9", ts.api.vars("eliminarCategoria")["id"])

	rec = ts.do(t, http.MethodPost, "/api/admin/categories/", token, map[string]string{"name": "  ", "description": "Preguntas"})
	assert.Equal(t, 2011, errorCode(t, rec))

	t.Run("not admin", func(t *testing.T) {
		ts := newTestServer(t, map[string]fakeResponse{
			"obtenerUsuario": data(t, "obtenerUsuario", backend.User{ID: "u1", Rol: backend.RoleUser}),
			"crearCategoria": data(t, "crearCategoria", backend.Category{ID: "c9"}),
		})
		rec := ts.do(t, http.MethodPost, "/api/admin/categories/", token, map[string]string{"name": "Ayuda", "description": "Preguntas"})
		assert.Equal(t, 1007, errorCode(t, rec))
		assert.Nil(t, ts.api.vars("crearCategoria"))
	})
}

func TestUpdateProfile(t *testing.T) {
	ts := newTestServer(t, map[string]fakeResponse{
		"actualizarUsuario": data(t, "actualizarUsuario", backend.User{ID: "u1", Nombre: "Ana", Apellido: "Pérez", Celular: "+54 11 5555-1234"}),
	})
	token := makeToken(t, "u1", backend.RoleUser, time.Now().Add(time.Hour))

	rec := ts.do(t, http.MethodPatch, "/api/auth/me/", token, map[string]string{
		"first_name": "Ana",
		"last_name":  "Pérez",
		"phone":      "+54 11 5555-1234",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"phone":"+54 11 5555-1234"`)
	assert.Equal(t, "u1", ts.api.vars("actualizarUsuario")["id"])
	assert.Equal(t, map[string]any{"nombre": "Ana", "apellido": "Pérez", "celular": "+54 11 5555-1234"}, ts.api.vars("actualizarUsuario")["input"])
	assert.Equal(t, "Bearer "+token, ts.api.authFor("actualizarUsuario"))

	rec = ts.do(t, http.MethodPatch, "/api/auth/me/", token, map[string]string{"first_name": "Ana", "last_name": "Pérez", "phone": "llamame"})
	assert.Equal(t, 1009, errorCode(t, rec))

	rec = ts.do(t, http.MethodPatch, "/api/auth/me/", "", map[string]string{"first_name": "Ana", "last_name": "Pérez", "phone": "+54 11 5555-1234"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 1003, errorCode(t, rec))
}

func TestBackendErrors(t *testing.T) {
	ts := newTestServer(t, map[string]fakeResponse{
		"obtenerAnuncios":   {status: http.StatusBadGateway, body: "upstream down"},
		"obtenerCategorias": {status: http.StatusOK, body: `{"data":null,"errors":[{"message":"categoría inválida"}]}`},
	})

	rec := ts.do(t, http.MethodGet, "/api/announcements/", "", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, 5001, errorCode(t, rec))

	rec = ts.do(t, http.MethodGet, "/api/categories/", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 5002, errorCode(t, rec))
	assert.Contains(t, rec.Body.String(), "categoría inválida")
}

type editorResponse struct {
	State struct {
		Content   string `json:"content"`
		Selection struct {
			StartOffset int `json:"start_offset"`
			EndOffset   int `json:"end_offset"`
		} `json:"selection"`
		Override    []string `json:"override"`
		HasOverride bool     `json:"has_override"`
	} `json:"state"`
	HTML      string `json:"html"`
	Submitted string `json:"submitted"`
}

func applyEditor(t *testing.T, ts *testServer, req map[string]any) editorResponse {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/editor/apply/", "", req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp editorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestEditorApply(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := applyEditor(t, ts, map[string]any{"command": "insert-text", "text": "Hello world"})
	assert.Equal(t, "<p>Hello world</p>", resp.HTML)
	assert.Equal(t, 11, resp.State.Selection.EndOffset)

	resp = applyEditor(t, ts, map[string]any{
		"state": map[string]any{
			"content":   resp.State.Content,
			"selection": map[string]int{"start_block": 0, "start_offset": 0, "end_block": 0, "end_offset": 5},
		},
		"key": "Mod+B",
	})
	assert.Equal(t, "<p><strong>Hello</strong> world</p>", resp.HTML)

	t.Run("toolbar matches key", func(t *testing.T) {
		state := map[string]any{
			"content":   helloWorld,
			"selection": map[string]int{"start_block": 0, "start_offset": 6, "end_block": 0, "end_offset": 11},
		}
		byKey := applyEditor(t, ts, map[string]any{"state": state, "key": "Ctrl+I"})
		byButton := applyEditor(t, ts, map[string]any{"state": state, "command": "toggle-style", "style": "ITALIC"})
		assert.Equal(t, byKey.State, byButton.State)
		assert.Equal(t, "<p><strong>Hello</strong> <em>world</em></p>", byButton.HTML)
	})

	t.Run("override", func(t *testing.T) {
		resp := applyEditor(t, ts, map[string]any{"command": "toggle-style", "style": "BOLD"})
		assert.True(t, resp.State.HasOverride)
		assert.Equal(t, []string{"BOLD"}, resp.State.Override)

		resp = applyEditor(t, ts, map[string]any{
			"state":   map[string]any{"content": resp.State.Content, "override": resp.State.Override, "has_override": true},
			"command": "insert-text",
			"text":    "Hi",
		})
		assert.Equal(t, "<p><strong>Hi</strong></p>", resp.HTML)
	})

	t.Run("select all", func(t *testing.T) {
		resp := applyEditor(t, ts, map[string]any{"state": map[string]any{"content": helloWorld}, "command": "select-all"})
		assert.Equal(t, 0, resp.State.Selection.StartOffset)
		assert.Equal(t, 11, resp.State.Selection.EndOffset)

		resp = applyEditor(t, ts, map[string]any{"state": resp.State, "command": "toggle-style", "style": "UNDERLINE"})
		assert.Equal(t, "<p><strong><u>Hello</u></strong><u> world</u></p>", resp.HTML)
	})

	t.Run("paste", func(t *testing.T) {
		resp := applyEditor(t, ts, map[string]any{"command": "paste", "html": "<b>x</b><script>alert(1)</script>"})
		assert.Equal(t, "<p><strong>x</strong></p>", resp.HTML)
	})

	t.Run("submit", func(t *testing.T) {
		resp := applyEditor(t, ts, map[string]any{"state": map[string]any{"content": helloWorld}, "command": "submit"})
		assert.Equal(t, helloWorld, resp.Submitted)
		assert.Equal(t, "<p></p>", resp.HTML)
	})

	t.Run("errors", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/editor/apply/", "", map[string]any{"key": "Mod+K"})
		assert.Equal(t, 3003, errorCode(t, rec))

		rec = ts.do(t, http.MethodPost, "/api/editor/apply/", "", map[string]any{"command": "toggle-style", "style": "CODE"})
		assert.Equal(t, 3003, errorCode(t, rec))

		rec = ts.do(t, http.MethodPost, "/api/editor/apply/", "", map[string]any{"state": map[string]any{"content": helloWorld}, "command": "load", "text": helloWorld})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, 3004, errorCode(t, rec))

		rec = ts.do(t, http.MethodPost, "/api/editor/apply/", "", map[string]any{"state": map[string]any{"content": "not json"}, "command": "backspace"})
		assert.Equal(t, 3001, errorCode(t, rec))
	})
}

func TestEditorRenderAndNormalize(t *testing.T) {
	ts := newTestServer(t, nil)

	before := testutil.ToFloat64(malformedContentCounter.WithLabelValues("editor"))

	rec := ts.do(t, http.MethodPost, "/api/editor/render/", "", map[string]string{"content": "not json"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"html":"<p>Error al procesar el contenido</p>","malformed":true}`, rec.Body.String())

	// черновики не попадают в метрику сохраненного контента
	assert.Equal(t, before, testutil.ToFloat64(malformedContentCounter.WithLabelValues("editor")))

	rec = ts.do(t, http.MethodPost, "/api/editor/render/", "", map[string]string{"content": helloWorld})
	assert.JSONEq(t, `{"html":"<p><strong>Hello</strong> world</p>","malformed":false}`, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/api/editor/normalize/", "", map[string]string{"content": helloWorld})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"content"`)

	rec = ts.do(t, http.MethodPost, "/api/editor/normalize/", "", map[string]string{"content": "not json"})
	assert.Equal(t, 3001, errorCode(t, rec))
}

func uploadRequest(t *testing.T, token, name string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload/", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	return req
}

func TestUpload(t *testing.T) {
	ts := newTestServer(t, nil)
	token := makeToken(t, "u1", backend.RoleUser, time.Now().Add(time.Hour))
	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, uploadRequest(t, token, "foto.png", png))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"fileUrl":"http://files.test/foto.png"}`, rec.Body.String())
	assert.Equal(t, png, ts.storage.files["foto.png"])
	assert.Equal(t, "image/png", ts.storage.types["foto.png"])

	rec = httptest.NewRecorder()
	ts.e.ServeHTTP(rec, uploadRequest(t, token, "a.txt", []byte("plain text")))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Equal(t, 4004, errorCode(t, rec))

	rec = httptest.NewRecorder()
	ts.e.ServeHTTP(rec, uploadRequest(t, token, "big.png", append(png, make([]byte, 3<<19)...)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, 4002, errorCode(t, rec))

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/upload/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	ts.e.ServeHTTP(rec, req)
	assert.Equal(t, 4001, errorCode(t, rec))
}

func TestPostPage(t *testing.T) {
	ts := newTestServer(t, map[string]fakeResponse{
		"obtenerPosts":                      data(t, "obtenerPosts", []backend.Post{samplePost("1", "u2", helloWorld)}),
		"obtenerComentarioPorPost":          data(t, "obtenerComentarioPorPost", []backend.Comment{{ID: "m1", Contenido: "Buen <post>", Autor: &backend.User{Nombre: "Luis"}}}),
		"obtenerPuntuacionesPorPublicacion": data(t, "obtenerPuntuacionesPorPublicacion", []backend.Rating{{ID: "r1", Puntuacion: 4}}),
	})

	rec := ts.do(t, http.MethodGet, "/p/1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	page := rec.Body.String()
	assert.Contains(t, page, "<title>Hola | Foro</title>")
	assert.Contains(t, page, "<p><strong>Hello</strong> world</p>")
	assert.Contains(t, page, "Buen &lt;post&gt;")
	assert.Contains(t, page, "4.0")
	assert.NotContains(t, page, "{{")

	rec = ts.do(t, http.MethodGet, "/p/2/", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 5005, errorCode(t, rec))
}
