package backend

// Роли пользователей, которые выдает API.
const (
	RoleUser      = "USUARIO"
	RoleModerator = "MODERADOR"
	RoleAdmin     = "ADMINISTRADOR"
)

// Статусы жалоб.
const (
	ReportPending  = "PENDIENTE"
	ReportApproved = "APROBADO"
	ReportRejected = "RECHAZADO"
)

type User struct {
	ID       string `json:"id"`
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	Email    string `json:"email,omitempty"`
	Rol      string `json:"rol,omitempty"`
	Celular  string `json:"celular,omitempty"`
	Pais     string `json:"pais,omitempty"`
	Ciudad   string `json:"ciudad,omitempty"`
	Rubro    string `json:"rubro,omitempty"`
}

func (u User) IsAdmin() bool {
	return u.Rol == RoleAdmin
}

type Category struct {
	ID          string `json:"id"`
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion,omitempty"`
	Creado      string `json:"creado,omitempty"`
}

// Post - публикация. Contenido хранится в формате документа редактора.
type Post struct {
	ID                 string    `json:"id"`
	Titulo             string    `json:"titulo"`
	Contenido          string    `json:"contenido"`
	Autor              *User     `json:"autor,omitempty"`
	Categoria          *Category `json:"categoria,omitempty"`
	ImagenURL          string    `json:"imagenUrl,omitempty"`
	PdfURL             string    `json:"pdfUrl,omitempty"`
	PromedioPuntuacion float64   `json:"promedioPuntuacion,omitempty"`
	NumeroPuntuaciones int       `json:"numeroPuntuaciones,omitempty"`
	Creado             string    `json:"creado,omitempty"`
}

type Comment struct {
	ID        string `json:"id"`
	Contenido string `json:"contenido"`
	Autor     *User  `json:"autor,omitempty"`
	Creado    string `json:"creado,omitempty"`
}

type Rating struct {
	ID         string `json:"id"`
	Puntuacion int    `json:"puntuacion"`
}

type Announcement struct {
	ID          string `json:"id"`
	Titulo      string `json:"titulo"`
	Contenido   string `json:"contenido"`
	ImagenURL   string `json:"imagenUrl,omitempty"`
	FechaInicio string `json:"fechaInicio,omitempty"`
	FechaFinal  string `json:"fechaFinal,omitempty"`
}

type Notification struct {
	ID            string `json:"id"`
	Mensaje       string `json:"mensaje"`
	Leido         bool   `json:"leido"`
	FechaCreacion string `json:"fechaCreacion,omitempty"`
}

type Report struct {
	ID            string `json:"id"`
	Usuario       *User  `json:"usuario,omitempty"`
	Publicacion   *Post  `json:"publicacion,omitempty"`
	Motivo        string `json:"motivo"`
	Estado        string `json:"estado"`
	FechaCreacion string `json:"fechaCreacion,omitempty"`
}

// Result - ответ мутаций, которые возвращают только признак успеха.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type PostInput struct {
	Titulo      string `json:"titulo"`
	Contenido   string `json:"contenido"`
	CategoriaID string `json:"categoriaId,omitempty"`
	ImagenURL   string `json:"imagenUrl,omitempty"`
	PdfURL      string `json:"pdfUrl,omitempty"`
}

type PostUpdateInput struct {
	Titulo    *string `json:"titulo,omitempty"`
	Contenido *string `json:"contenido,omitempty"`
	ImagenURL *string `json:"imagenUrl,omitempty"`
	PdfURL    *string `json:"pdfUrl,omitempty"`
}

type CommentInput struct {
	Contenido string `json:"contenido"`
	PostID    string `json:"postId"`
	AutorID   string `json:"autorId,omitempty"`
}

type CategoryInput struct {
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion"`
}

// UserUpdateInput - поля профиля, которые пользователь может менять сам.
type UserUpdateInput struct {
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	Celular  string `json:"celular"`
}

type RegisterInput struct {
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Celular  string `json:"celular,omitempty"`
	Rubro    string `json:"rubro,omitempty"`
	Pais     string `json:"pais,omitempty"`
	Ciudad   string `json:"ciudad,omitempty"`
}
