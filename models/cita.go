package models

import "errors"

// Cita representa la tabla citas en la base de datos
type Cita struct {
	ID             int64  `json:"id" db:"id"`
	Fecha          Fecha  `json:"fecha" db:"fecha"`
	NombrePaciente string `json:"nombre_paciente" db:"nombre_paciente"`
	Especialidad   string `json:"especialidad" db:"especialidad"`
	Medico         string `json:"medico" db:"medico"`
}

// CitaRequest cuerpo esperado en POST y PUT /api/citas. Los textos se
// guardan tal como llegan; notblank rechaza los que sólo tienen espacios.
type CitaRequest struct {
	Fecha          string `json:"fecha" validate:"required,datetime=2006-01-02"`
	NombrePaciente string `json:"nombre_paciente" validate:"required,notblank,max=255"`
	Especialidad   string `json:"especialidad" validate:"required,notblank,max=255"`
	Medico         string `json:"medico" validate:"required,notblank,max=255"`
}

// Años de DATE aceptados por MySQL/MariaDB; PostgreSQL no tiene año 0
const (
	AnioMinimo = 1000
	AnioMaximo = 9999
)

// ErrFechaFueraDeRango la fecha es válida pero ningún almacén la acepta
var ErrFechaFueraDeRango = errors.New("fecha fuera de rango")

// CitaInput campos de una cita ya validados, listos para el almacén
type CitaInput struct {
	Fecha          Fecha
	NombrePaciente string
	Especialidad   string
	Medico         string
}

// ToInput convierte la solicitud validada sin alterar los textos
func (r CitaRequest) ToInput() (CitaInput, error) {
	fecha, err := ParseFecha(r.Fecha)
	if err != nil {
		return CitaInput{}, err
	}
	if y := fecha.Year(); y < AnioMinimo || y > AnioMaximo {
		return CitaInput{}, ErrFechaFueraDeRango
	}
	return CitaInput{
		Fecha:          fecha,
		NombrePaciente: r.NombrePaciente,
		Especialidad:   r.Especialidad,
		Medico:         r.Medico,
	}, nil
}

// WithID arma la representación completa de la cita
func (in CitaInput) WithID(id int64) Cita {
	return Cita{
		ID:             id,
		Fecha:          in.Fecha,
		NombrePaciente: in.NombrePaciente,
		Especialidad:   in.Especialidad,
		Medico:         in.Medico,
	}
}
