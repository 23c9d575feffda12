package services

import (
	"strings"

	"gorm.io/gorm"

	"jobportal_backend/internal/models"
	"jobportal_backend/internal/services/dto"
	"jobportal_backend/pkg/apperrors"
)

// nullJobReference обнуляет ссылку вакансий на удаляемый справочник.
// FK объявлен как ON DELETE SET NULL, но на уже созданных таблицах
// ограничение может отсутствовать.
func nullJobReference(column string) func(db *gorm.DB, id string) error {
	return func(db *gorm.DB, id string) error {
		return db.Model(&models.Job{}).Where(column+" = ?", id).Update(column, nil).Error
	}
}

func SectorHooks() LookupHooks[models.Sector, *models.Sector] {
	return LookupHooks[models.Sector, *models.Sector]{BeforeDelete: nullJobReference("sector_id")}
}

func QualificationHooks() LookupHooks[models.Qualification, *models.Qualification] {
	return LookupHooks[models.Qualification, *models.Qualification]{BeforeDelete: nullJobReference("qualification_id")}
}

func WorkModeHooks() LookupHooks[models.WorkMode, *models.WorkMode] {
	return LookupHooks[models.WorkMode, *models.WorkMode]{BeforeDelete: nullJobReference("work_mode_id")}
}

func CountryHooks() LookupHooks[models.Country, *models.Country] {
	return LookupHooks[models.Country, *models.Country]{
		Apply: func(_ *gorm.DB, c *models.Country, req *dto.LookupRequest) error {
			c.Code = strings.ToUpper(strings.TrimSpace(req.Code))
			return nil
		},
		BeforeDelete: func(db *gorm.DB, id string) error {
			if err := db.Model(&models.Province{}).Where("country_id = ?", id).Update("country_id", nil).Error; err != nil {
				return err
			}
			return nullJobReference("country_id")(db, id)
		},
	}
}

func ProvinceHooks() LookupHooks[models.Province, *models.Province] {
	return LookupHooks[models.Province, *models.Province]{
		Apply: func(db *gorm.DB, p *models.Province, req *dto.LookupRequest) error {
			if req.CountryID == nil || *req.CountryID == "" {
				p.CountryID = nil
				p.Country = nil
				return nil
			}
			if err := requireRow(db, &models.Country{}, *req.CountryID, "countryId"); err != nil {
				return err
			}
			id := *req.CountryID
			p.CountryID = &id
			p.Country = nil
			return nil
		},
		BeforeDelete: func(db *gorm.DB, id string) error {
			var cities int64
			if err := db.Model(&models.City{}).Where("province_id = ?", id).Count(&cities).Error; err != nil {
				return err
			}
			if cities > 0 {
				return apperrors.NewConflictError("province", "Province still has cities").
					WithDetails(map[string]int64{"cities": cities})
			}
			return nullJobReference("province_id")(db, id)
		},
	}
}

func CityHooks() LookupHooks[models.City, *models.City] {
	return LookupHooks[models.City, *models.City]{
		Apply: func(db *gorm.DB, c *models.City, req *dto.LookupRequest) error {
			if req.ProvinceID == "" {
				return apperrors.ValidationError(map[string]string{"provinceId": "provinceId is required"})
			}
			if err := requireRow(db, &models.Province{}, req.ProvinceID, "provinceId"); err != nil {
				return err
			}
			c.ProvinceID = req.ProvinceID
			c.Province = nil
			return nil
		},
		BeforeDelete: nullJobReference("city_id"),
	}
}

func WorkExperienceHooks() LookupHooks[models.WorkExperience, *models.WorkExperience] {
	return LookupHooks[models.WorkExperience, *models.WorkExperience]{
		Apply: func(_ *gorm.DB, w *models.WorkExperience, req *dto.LookupRequest) error {
			if req.MinYears != nil {
				w.MinYears = *req.MinYears
			}
			if req.MaxYears != nil {
				w.MaxYears = *req.MaxYears
			}
			if w.MinYears > w.MaxYears {
				return apperrors.ValidationError(map[string]string{"maxYears": "maxYears must be greater than or equal to minYears"})
			}
			return nil
		},
		BeforeDelete: nullJobReference("work_experience_id"),
	}
}

// requireRow - ссылка на несуществующую запись дает 400 с именем поля
func requireRow(db *gorm.DB, model interface{}, id, field string) error {
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return apperrors.InternalError(err)
	}
	if count == 0 {
		return apperrors.ValidationError(map[string]string{field: "referenced record does not exist"})
	}
	return nil
}
