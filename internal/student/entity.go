// AngelaMos | 2026
// entity.go

package student

// Student is the legacy roster row kept alongside usuarios for school
// administration exports. It never stores credentials.
type Student struct {
	ID       int64  `db:"id" json:"id"`
	DNI      string `db:"dni" json:"dni"`
	Nombre   string `db:"nombre" json:"nombre"`
	Apellido string `db:"apellido" json:"apellido"`
	Edad     int    `db:"edad" json:"edad"`
	Grado    string `db:"grado" json:"grado"`
	Seccion  string `db:"seccion" json:"seccion"`
	Sexo     string `db:"sexo" json:"sexo"`
	Correo   string `db:"correo" json:"correo"`
	TenantID string `db:"tenant_id" json:"tenant_id"`
}
