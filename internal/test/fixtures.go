package test

import (
	"time"

	"github.com/google/uuid"

	"github.com/courseforge/commerce/internal/domain/model"
)

// OpenCourse returns a course with a single open run.
func OpenCourse() model.Course {
	return model.Course{
		Code:  "C-" + uuid.NewString()[:8],
		Title: "Test course",
		CourseRuns: []model.CourseRun{{
			ID:    uuid.NewString(),
			State: model.CourseRunStateOngoingOpen,
			Start: time.Now().Add(-24 * time.Hour),
			End:   time.Now().Add(24 * time.Hour),
		}},
	}
}

// ClosedCourse returns a course whose only run is archived.
func ClosedCourse() model.Course {
	course := OpenCourse()
	course.CourseRuns[0].State = model.CourseRunStateArchived
	return course
}

// CredentialProduct returns a purchasable credential product over the given
// target courses.
func CredentialProduct(courses ...model.Course) model.Product {
	return model.Product{
		ID:            uuid.NewString(),
		Title:         "Test product",
		Type:          model.ProductTypeCredential,
		Price:         100,
		PriceCurrency: "EUR",
		TargetCourses: courses,
	}
}

// OrderInState returns an order snapshot for the given product and state.
func OrderInState(state model.OrderState, product model.Product) model.Order {
	return model.Order{
		ID:      uuid.NewString(),
		State:   state,
		Product: product,
	}
}
