package validation

import (
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/surendratiwari3/taskexec/schema"
	"github.com/surendratiwari3/taskexec/schema/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateConsumer makes sure consumer can actually run: it must not be nil (typed nil
// pointers included), a TaskConsumerFunc must carry a function, and at least one launch
// reason must be declared.
func ValidateConsumer(consumer schema.TaskConsumer) error {
	if consumer == nil {
		return errors.ErrNilConsumer
	}
	v := reflect.ValueOf(consumer)
	switch v.Kind() {
	case reflect.Ptr, reflect.Func, reflect.Map, reflect.Interface:
		if v.IsNil() {
			return errors.ErrNilConsumer
		}
	}
	switch c := consumer.(type) {
	case schema.TaskConsumerFunc:
		if c.Fn == nil {
			return errors.ErrNilConsumer
		}
	case *schema.TaskConsumerFunc:
		if c.Fn == nil {
			return errors.ErrNilConsumer
		}
	}
	if len(consumer.Reasons()) == 0 {
		return fmt.Errorf("%w: consumer declares no launch reason", errors.ErrInvalidTask)
	}
	return nil
}

// ValidateTrigger checks the reason and filters of trigger
func ValidateTrigger(trigger *schema.Trigger) error {
	if trigger == nil {
		return errors.ErrInvalidTrigger
	}
	if err := validate.Struct(trigger); err != nil {
		return fmt.Errorf("%w: %s", errors.ErrInvalidTrigger, err)
	}
	return nil
}
