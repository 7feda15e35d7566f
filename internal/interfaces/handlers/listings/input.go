package listings

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"estate-backend/internal/application/images"
	listsvc "estate-backend/internal/application/listings"
	"estate-backend/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

// parseFilters reads the list query parameters. Malformed numbers come back
// as field-level validation errors instead of being silently ignored.
func parseFilters(c *fiber.Ctx) (listsvc.Filters, error) {
	f := listsvc.Filters{
		City:         queryAlias(c, "location__city", "city"),
		District:     queryAlias(c, "location__district", "district"),
		DealType:     strings.TrimSpace(c.Query("deal_type")),
		PropertyType: strings.TrimSpace(c.Query("property_type")),
		Search:       strings.TrimSpace(c.Query("search")),
		Ordering:     strings.TrimSpace(c.Query("ordering")),
	}

	var err error
	if f.Rooms, err = queryInt(c, "rooms"); err != nil {
		return f, err
	}
	if f.PriceGte, err = queryFloat(c, "price__gte"); err != nil {
		return f, err
	}
	if f.PriceLte, err = queryFloat(c, "price__lte"); err != nil {
		return f, err
	}
	if f.AreaGte, err = queryFloat(c, "area__gte"); err != nil {
		return f, err
	}
	if f.AreaLte, err = queryFloat(c, "area__lte"); err != nil {
		return f, err
	}

	page, err := queryInt(c, "page")
	if err != nil {
		return f, err
	}
	if page != nil {
		f.Page = *page
	}
	pageSize, err := queryInt(c, "page_size")
	if err != nil {
		return f, err
	}
	if pageSize != nil {
		f.PageSize = *pageSize
	}
	return f, nil
}

// queryAlias reads the first non-empty value among the given parameter names.
func queryAlias(c *fiber.Ctx, names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(c.Query(name)); v != "" {
			return v
		}
	}
	return ""
}

func queryInt(c *fiber.Ctx, name string) (*int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperror.FieldError(name, "Must be an integer")
	}
	return &v, nil
}

func queryFloat(c *fiber.Ctx, name string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperror.FieldError(name, "Must be a number")
	}
	return &v, nil
}

func createInput(c *fiber.Ctx) (listsvc.CreateInput, error) {
	var in listsvc.CreateInput
	if !isMultipart(c) {
		if err := c.BodyParser(&in); err != nil {
			return in, apperror.Validation("Invalid request body", nil)
		}
		return in, nil
	}

	in.Title = strings.TrimSpace(c.FormValue("title"))
	in.Description = c.FormValue("description")
	in.Address = strings.TrimSpace(c.FormValue("address"))
	in.DealType = strings.TrimSpace(c.FormValue("deal_type"))
	in.PropertyType = strings.TrimSpace(c.FormValue("property_type"))

	price, err := formFloat(c, "price")
	if err != nil {
		return in, err
	}
	if price != nil {
		in.Price = *price
	}
	rooms, err := formInt(c, "rooms")
	if err != nil {
		return in, err
	}
	if rooms != nil {
		in.Rooms = *rooms
	}
	area, err := formFloat(c, "area")
	if err != nil {
		return in, err
	}
	if area != nil {
		in.Area = *area
	}
	locID, err := formInt(c, "location_id")
	if err != nil {
		return in, err
	}
	if locID != nil && *locID > 0 {
		u := uint(*locID)
		in.LocationID = &u
	}
	if raw := c.FormValue("attributes"); raw != "" {
		if !json.Valid([]byte(raw)) {
			return in, apperror.FieldError("attributes", "Must be a JSON object")
		}
		in.Attributes = datatypes.JSON(raw)
	}

	in.Uploads, err = formUploads(c, "images")
	if err != nil {
		return in, err
	}
	return in, nil
}

func updateInput(c *fiber.Ctx) (listsvc.UpdateInput, error) {
	var in listsvc.UpdateInput
	if !isMultipart(c) {
		if err := c.BodyParser(&in); err != nil {
			return in, apperror.Validation("Invalid request body", nil)
		}
		return in, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return in, apperror.Validation("Invalid multipart form", nil)
	}
	has := func(name string) bool {
		_, ok := form.Value[name]
		return ok
	}
	if has("title") {
		v := strings.TrimSpace(c.FormValue("title"))
		in.Title = &v
	}
	if has("description") {
		v := c.FormValue("description")
		in.Description = &v
	}
	if has("address") {
		v := strings.TrimSpace(c.FormValue("address"))
		in.Address = &v
	}
	if has("deal_type") {
		v := strings.TrimSpace(c.FormValue("deal_type"))
		in.DealType = &v
	}
	if has("property_type") {
		v := strings.TrimSpace(c.FormValue("property_type"))
		in.PropertyType = &v
	}
	if has("price") {
		if in.Price, err = formFloat(c, "price"); err != nil {
			return in, err
		}
	}
	if has("rooms") {
		if in.Rooms, err = formInt(c, "rooms"); err != nil {
			return in, err
		}
	}
	if has("area") {
		if in.Area, err = formFloat(c, "area"); err != nil {
			return in, err
		}
	}
	if has("location_id") {
		locID, err := formInt(c, "location_id")
		if err != nil {
			return in, err
		}
		if locID != nil && *locID > 0 {
			u := uint(*locID)
			in.LocationID = &u
		}
	}
	if has("is_active") {
		v, err := strconv.ParseBool(c.FormValue("is_active"))
		if err != nil {
			return in, apperror.FieldError("is_active", "Must be a boolean")
		}
		in.IsActive = &v
	}
	if has("attributes") {
		raw := c.FormValue("attributes")
		if !json.Valid([]byte(raw)) {
			return in, apperror.FieldError("attributes", "Must be a JSON object")
		}
		in.Attributes = datatypes.JSON(raw)
	}

	if in.Uploads, err = formUploads(c, "images"); err != nil {
		return in, err
	}
	return in, nil
}

func formInt(c *fiber.Ctx, name string) (*int, error) {
	raw := strings.TrimSpace(c.FormValue(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperror.FieldError(name, "Must be an integer")
	}
	return &v, nil
}

func formFloat(c *fiber.Ctx, name string) (*float64, error) {
	raw := strings.TrimSpace(c.FormValue(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperror.FieldError(name, "Must be a number")
	}
	return &v, nil
}

// formUploads reads every file under the given multipart field into memory.
// Returns nil without error when the request is not multipart.
func formUploads(c *fiber.Ctx, field string) ([]images.Upload, error) {
	if !isMultipart(c) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, apperror.Validation("Invalid multipart form", nil)
	}
	files := form.File[field]
	if len(files) == 0 {
		return nil, nil
	}
	uploads := make([]images.Upload, 0, len(files))
	for _, fh := range files {
		up, err := readUpload(fh)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, up)
	}
	return uploads, nil
}

func readUpload(fh *multipart.FileHeader) (images.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return images.Upload{}, apperror.FieldError("images", "Could not read uploaded file")
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return images.Upload{}, apperror.FieldError("images", "Could not read uploaded file")
	}
	return images.Upload{FileName: fh.Filename, Content: content}, nil
}
