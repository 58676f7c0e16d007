package backend

import (
	"context"
	"net/http"
)

const userFields = `id nombre apellido rol`

const postFields = `
	id
	titulo
	contenido
	autor { id nombre apellido }
	categoria { id nombre }
	imagenUrl
	pdfUrl
	promedioPuntuacion
	numeroPuntuaciones
	creado`

const commentFields = `id contenido autor { id nombre apellido } creado`

// Login обменивает email и пароль на токен.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var data struct {
		AutenticarUsuario struct {
			Token string `json:"token"`
		} `json:"autenticarUsuario"`
	}
	err := c.Do(ctx, "", `mutation autenticarUsuario($input: AutenticarInput) {
		autenticarUsuario(input: $input) { token }
	}`, map[string]any{"input": map[string]string{"email": email, "password": password}}, &data)
	return data.AutenticarUsuario.Token, err
}

func (c *Client) Register(ctx context.Context, input RegisterInput) (User, error) {
	var data struct {
		NuevoUsuario User `json:"nuevoUsuario"`
	}
	err := c.Do(ctx, "", `mutation nuevoUsuario($input: UsuarioInput) {
		nuevoUsuario(input: $input) { id nombre apellido email pais ciudad rubro rol }
	}`, map[string]any{"input": input}, &data)
	return data.NuevoUsuario, err
}

// CurrentUser возвращает владельца токена.
func (c *Client) CurrentUser(ctx context.Context, token string) (User, error) {
	var data struct {
		ObtenerUsuario *User `json:"obtenerUsuario"`
	}
	if err := c.Do(ctx, token, `query { obtenerUsuario { `+userFields+` } }`, nil, &data); err != nil {
		return User{}, err
	}
	if data.ObtenerUsuario == nil {
		return User{}, &APIError{StatusCode: http.StatusUnauthorized, Errors: []GraphQLError{{Message: "user not found", Extensions: map[string]any{"code": "UNAUTHENTICATED"}}}}
	}
	return *data.ObtenerUsuario, nil
}

// UpdateUser меняет профиль пользователя id.
func (c *Client) UpdateUser(ctx context.Context, token, id string, input UserUpdateInput) (User, error) {
	var data struct {
		ActualizarUsuario User `json:"actualizarUsuario"`
	}
	err := c.Do(ctx, token, `mutation actualizarUsuario($id: ID!, $input: ActualizarUsuarioInput) {
		actualizarUsuario(id: $id, input: $input) { id nombre apellido email celular pais ciudad rubro }
	}`, map[string]any{"id": id, "input": input}, &data)
	return data.ActualizarUsuario, err
}

func (c *Client) Users(ctx context.Context, token string) ([]User, error) {
	var data struct {
		ObtenerUsuarios []User `json:"obtenerUsuarios"`
	}
	err := c.Do(ctx, token, `query { obtenerUsuarios { `+userFields+` } }`, nil, &data)
	return data.ObtenerUsuarios, err
}

func (c *Client) UpdateUserRole(ctx context.Context, token, id, role string) (User, error) {
	var data struct {
		ActualizarRolUsuario User `json:"actualizarRolUsuario"`
	}
	err := c.Do(ctx, token, `mutation ActualizarRolUsuario($id: ID!, $nuevoRol: String!) {
		actualizarRolUsuario(id: $id, nuevoRol: $nuevoRol) { id rol }
	}`, map[string]any{"id": id, "nuevoRol": role}, &data)
	return data.ActualizarRolUsuario, err
}

func (c *Client) Categories(ctx context.Context, token string) ([]Category, error) {
	var data struct {
		ObtenerCategorias []Category `json:"obtenerCategorias"`
	}
	err := c.Do(ctx, token, `query { obtenerCategorias { id nombre descripcion creado } }`, nil, &data)
	return data.ObtenerCategorias, err
}

func (c *Client) CreateCategory(ctx context.Context, token string, input CategoryInput) (Category, error) {
	var data struct {
		CrearCategoria Category `json:"crearCategoria"`
	}
	err := c.Do(ctx, token, `mutation CrearCategoria($input: CategoriaInput!) {
		crearCategoria(input: $input) { id nombre descripcion }
	}`, map[string]any{"input": input}, &data)
	return data.CrearCategoria, err
}

func (c *Client) UpdateCategory(ctx context.Context, token, id string, input CategoryInput) (Category, error) {
	var data struct {
		ActualizarCategoria Category `json:"actualizarCategoria"`
	}
	err := c.Do(ctx, token, `mutation EditarCategoria($id: ID!, $input: CategoriaUpdateInput!) {
		actualizarCategoria(id: $id, input: $input) { id nombre descripcion }
	}`, map[string]any{"id": id, "input": input}, &data)
	return data.ActualizarCategoria, err
}

func (c *Client) DeleteCategory(ctx context.Context, token, id string) error {
	return c.Do(ctx, token, `mutation EliminarCategoria($id: ID!) { eliminarCategoria(id: $id) }`,
		map[string]any{"id": id}, nil)
}

// Posts возвращает посты категории. Пустой categoryID - все посты.
func (c *Client) Posts(ctx context.Context, token, categoryID string) ([]Post, error) {
	var data struct {
		ObtenerPosts []Post `json:"obtenerPosts"`
	}
	vars := map[string]any{}
	if categoryID != "" {
		vars["categoriaId"] = categoryID
	}
	err := c.Do(ctx, token, `query ObtenerPosts($categoriaId: ID) {
		obtenerPosts(categoriaId: $categoriaId) {`+postFields+` }
	}`, vars, &data)
	return data.ObtenerPosts, err
}

func (c *Client) MyPosts(ctx context.Context, token string) ([]Post, error) {
	var data struct {
		ObtenerMisPosts []Post `json:"obtenerMisPosts"`
	}
	err := c.Do(ctx, token, `query { obtenerMisPosts {`+postFields+` } }`, nil, &data)
	return data.ObtenerMisPosts, err
}

// Post ищет пост среди всех постов: у API нет запроса одного поста.
func (c *Client) Post(ctx context.Context, token, id string) (Post, error) {
	posts, err := c.Posts(ctx, token, "")
	if err != nil {
		return Post{}, err
	}
	for _, p := range posts {
		if p.ID == id {
			return p, nil
		}
	}
	return Post{}, &APIError{StatusCode: http.StatusNotFound, Errors: []GraphQLError{{Message: "post not found", Extensions: map[string]any{"code": "NOT_FOUND"}}}}
}

func (c *Client) CreatePost(ctx context.Context, token string, input PostInput) (Post, error) {
	var data struct {
		CrearPost Post `json:"crearPost"`
	}
	err := c.Do(ctx, token, `mutation CrearPublicacion($input: PostInput!) {
		crearPost(input: $input) {`+postFields+` }
	}`, map[string]any{"input": input}, &data)
	return data.CrearPost, err
}

func (c *Client) UpdatePost(ctx context.Context, token, id string, input PostUpdateInput) (Post, error) {
	var data struct {
		ActualizarPost Post `json:"actualizarPost"`
	}
	err := c.Do(ctx, token, `mutation EditarPublicacion($id: ID!, $input: PostUpdateInput!) {
		actualizarPost(id: $id, input: $input) { id titulo contenido imagenUrl pdfUrl }
	}`, map[string]any{"id": id, "input": input}, &data)
	return data.ActualizarPost, err
}

func (c *Client) DeletePost(ctx context.Context, token, id string) error {
	return c.Do(ctx, token, `mutation EliminarPublicacion($id: ID!) { eliminarPost(id: $id) }`,
		map[string]any{"id": id}, nil)
}

func (c *Client) ReportPost(ctx context.Context, token, postID, reason string) (Result, error) {
	var data struct {
		ReportarPublicacion Result `json:"reportarPublicacion"`
	}
	err := c.Do(ctx, token, `mutation ReportarPublicacion($publicacionId: ID!, $motivo: String!) {
		reportarPublicacion(input: { publicacionId: $publicacionId, motivo: $motivo }) { success message }
	}`, map[string]any{"publicacionId": postID, "motivo": reason}, &data)
	return data.ReportarPublicacion, err
}

func (c *Client) Comments(ctx context.Context, token, postID string) ([]Comment, error) {
	var data struct {
		ObtenerComentarioPorPost []Comment `json:"obtenerComentarioPorPost"`
	}
	err := c.Do(ctx, token, `query ObtenerComentarios($postId: ID!) {
		obtenerComentarioPorPost(postId: $postId) { `+commentFields+` }
	}`, map[string]any{"postId": postID}, &data)
	return data.ObtenerComentarioPorPost, err
}

func (c *Client) CreateComment(ctx context.Context, token string, input CommentInput) (Comment, error) {
	var data struct {
		CrearComentario Comment `json:"crearComentario"`
	}
	err := c.Do(ctx, token, `mutation CrearComentario($input: ComentarioInput!) {
		crearComentario(input: $input) { `+commentFields+` }
	}`, map[string]any{"input": input}, &data)
	return data.CrearComentario, err
}

func (c *Client) DeleteComment(ctx context.Context, token, id string) error {
	return c.Do(ctx, token, `mutation EliminarComentario($id: ID!) { eliminarComentario(id: $id) }`,
		map[string]any{"id": id}, nil)
}

func (c *Client) Ratings(ctx context.Context, token, postID string) ([]Rating, error) {
	var data struct {
		ObtenerPuntuacionesPorPublicacion []Rating `json:"obtenerPuntuacionesPorPublicacion"`
	}
	err := c.Do(ctx, token, `query ObtenerPuntuacionesPorPublicacion($publicacionId: ID!) {
		obtenerPuntuacionesPorPublicacion(publicacionId: $publicacionId) { id puntuacion }
	}`, map[string]any{"publicacionId": postID}, &data)
	return data.ObtenerPuntuacionesPorPublicacion, err
}

func (c *Client) CreateRating(ctx context.Context, token, postID string, value int) (Rating, error) {
	var data struct {
		CrearPuntuacion Rating `json:"crearPuntuacion"`
	}
	err := c.Do(ctx, token, `mutation CrearPuntuacion($input: CrearPuntuacionInput!) {
		crearPuntuacion(input: $input) { id puntuacion }
	}`, map[string]any{"input": map[string]any{"publicacionId": postID, "puntuacion": value}}, &data)
	return data.CrearPuntuacion, err
}

func (c *Client) Announcements(ctx context.Context, token string) ([]Announcement, error) {
	var data struct {
		ObtenerAnuncios []Announcement `json:"obtenerAnuncios"`
	}
	err := c.Do(ctx, token, `query { obtenerAnuncios { id titulo contenido imagenUrl fechaInicio fechaFinal } }`, nil, &data)
	return data.ObtenerAnuncios, err
}

func (c *Client) Notifications(ctx context.Context, token string) ([]Notification, error) {
	var data struct {
		ObtenerNotificaciones []Notification `json:"obtenerNotificaciones"`
	}
	err := c.Do(ctx, token, `query { obtenerNotificaciones { id mensaje leido fechaCreacion } }`, nil, &data)
	return data.ObtenerNotificaciones, err
}

func (c *Client) MarkNotificationRead(ctx context.Context, token, id string) (Notification, error) {
	var data struct {
		MarcarNotificacionComoLeida Notification `json:"marcarNotificacionComoLeida"`
	}
	err := c.Do(ctx, token, `mutation MarcarNotificacionComoLeida($id: ID!) {
		marcarNotificacionComoLeida(id: $id) { id leido }
	}`, map[string]any{"id": id}, &data)
	return data.MarcarNotificacionComoLeida, err
}

func (c *Client) DeleteNotification(ctx context.Context, token, id string) error {
	return c.Do(ctx, token, `mutation EliminarNotificacion($id: ID!) { eliminarNotificacion(id: $id) }`,
		map[string]any{"id": id}, nil)
}

func (c *Client) Reports(ctx context.Context, token string) ([]Report, error) {
	var data struct {
		ObtenerReportes []Report `json:"obtenerReportes"`
	}
	err := c.Do(ctx, token, `query {
		obtenerReportes {
			id
			usuario { nombre apellido }
			publicacion { id titulo contenido imagenUrl pdfUrl creado }
			motivo
			estado
			fechaCreacion
		}
	}`, nil, &data)
	return data.ObtenerReportes, err
}

func (c *Client) UpdateReportStatus(ctx context.Context, token, id, status string) (Result, error) {
	var data struct {
		ActualizarEstadoReporte Result `json:"actualizarEstadoReporte"`
	}
	err := c.Do(ctx, token, `mutation ActualizarEstadoReporte($reporteId: ID!, $estado: String!) {
		actualizarEstadoReporte(input: { reporteId: $reporteId, estado: $estado }) { success message }
	}`, map[string]any{"reporteId": id, "estado": status}, &data)
	return data.ActualizarEstadoReporte, err
}
