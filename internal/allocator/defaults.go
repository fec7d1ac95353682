package allocator

import "github.com/noah-isme/sigha-api/internal/models"

// DefaultWeeksPerTerm is the institutional term length used to derive weekly quotas.
const DefaultWeeksPerTerm = 16

// DefaultDays covers Monday through Saturday: five courses at ~7 weekly hours each
// need 35 periods, and six days of six periods give the grid 36.
func DefaultDays() []string {
	return []string{"Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado"}
}

// DefaultSlots returns the six 45-minute pedagogical periods of a teaching day.
// The 11:00-11:15 break sits between slots 4 and 5 and is rendered by consumers,
// not scheduled by the allocator.
func DefaultSlots() []models.TimeSlot {
	return []models.TimeSlot{
		{Start: "08:00", End: "08:45"},
		{Start: "08:45", End: "09:30"},
		{Start: "09:30", End: "10:15"},
		{Start: "10:15", End: "11:00"},
		{Start: "11:15", End: "12:00"},
		{Start: "12:00", End: "12:45"},
	}
}

// DefaultPrograms lists the institute's study tracks in fixed order.
func DefaultPrograms() []models.Program {
	return []models.Program{
		{ID: "apsti", Name: "APSTI", Terms: []int{1, 3, 5}},
		{ID: "contabilidad", Name: "CONTABILIDAD", Terms: []int{1, 3, 5}},
	}
}

// DefaultRooms is the built-in inventory: four theory classrooms and three labs.
func DefaultRooms() []models.Room {
	return []models.Room{
		{ID: "t1", Name: "Aula 101 (Teoría)", Type: models.RoomTypeClassroom, Capacity: 30},
		{ID: "t2", Name: "Aula 102 (Teoría)", Type: models.RoomTypeClassroom, Capacity: 30},
		{ID: "t3", Name: "Aula 103 (Teoría)", Type: models.RoomTypeClassroom, Capacity: 30},
		{ID: "t4", Name: "Aula 104 (Teoría)", Type: models.RoomTypeClassroom, Capacity: 30},
		{ID: "l1", Name: "Lab Computación 1", Type: models.RoomTypeLab, Capacity: 25},
		{ID: "l2", Name: "Lab Computación 2", Type: models.RoomTypeLab, Capacity: 25},
		{ID: "l3", Name: "Lab Contabilidad", Type: models.RoomTypeLab, Capacity: 25},
	}
}

// DefaultCatalog is the seed catalog used when no courses have been entered yet:
// two programs, three terms each, five courses per group, all at 110 semester hours.
func DefaultCatalog() []models.Course {
	courses := []struct {
		program string
		term    int
		name    string
		kind    models.CourseType
	}{
		{"apsti", 1, "Fundamentos de Programación", models.CourseTypeHybrid},
		{"apsti", 1, "Arquitectura de Computadoras", models.CourseTypeHybrid},
		{"apsti", 1, "Herramientas Multimedia", models.CourseTypePractice},
		{"apsti", 1, "Matemática Aplicada", models.CourseTypeTheory},
		{"apsti", 1, "Comunicación Efectiva", models.CourseTypeTheory},
		{"apsti", 3, "Estructura de Datos", models.CourseTypePractice},
		{"apsti", 3, "Análisis y Diseño de Sistemas", models.CourseTypeTheory},
		{"apsti", 3, "Base de Datos II", models.CourseTypeHybrid},
		{"apsti", 3, "Investigación e Innovación", models.CourseTypeTheory},
		{"apsti", 3, "Inglés Técnico", models.CourseTypeTheory},
		{"apsti", 5, "Desarrollo de Software Móvil", models.CourseTypePractice},
		{"apsti", 5, "Inteligencia de Negocios", models.CourseTypeHybrid},
		{"apsti", 5, "Seguridad Informática", models.CourseTypeHybrid},
		{"apsti", 5, "Gestión de Proyectos TI", models.CourseTypeTheory},
		{"apsti", 5, "Ética Profesional", models.CourseTypeTheory},
		{"contabilidad", 1, "Contabilidad General I", models.CourseTypeHybrid},
		{"contabilidad", 1, "Documentación Comercial", models.CourseTypeTheory},
		{"contabilidad", 1, "Legislación Tributaria", models.CourseTypeTheory},
		{"contabilidad", 1, "Informática Contable I", models.CourseTypePractice},
		{"contabilidad", 1, "Técnicas de Comunicación", models.CourseTypeTheory},
		{"contabilidad", 3, "Contabilidad de Costos", models.CourseTypeTheory},
		{"contabilidad", 3, "Técnica Presupuestal", models.CourseTypeTheory},
		{"contabilidad", 3, "Software Contable I", models.CourseTypePractice},
		{"contabilidad", 3, "Estadística General", models.CourseTypeHybrid},
		{"contabilidad", 3, "Legislación Laboral", models.CourseTypeTheory},
		{"contabilidad", 5, "Auditoría Financiera", models.CourseTypeHybrid},
		{"contabilidad", 5, "Contabilidad Gubernamental", models.CourseTypeTheory},
		{"contabilidad", 5, "Análisis de Estados Financieros", models.CourseTypeTheory},
		{"contabilidad", 5, "Aplicaciones Informáticas II", models.CourseTypePractice},
		{"contabilidad", 5, "Formulación de Proyectos", models.CourseTypeTheory},
	}

	result := make([]models.Course, 0, len(courses))
	for _, c := range courses {
		result = append(result, models.Course{
			Name:       c.name,
			Type:       c.kind,
			ProgramID:  c.program,
			Term:       c.term,
			TotalHours: 110,
		})
	}
	return result
}
