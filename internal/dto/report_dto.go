package dto

// ReportQuery is bound from ?type= on the report endpoints.
type ReportQuery struct {
	Type string `form:"type,default=all" validate:"oneof=summary all harvest milling storage sales"`
}
