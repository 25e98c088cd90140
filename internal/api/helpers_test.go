package api

import (
	"fmt"

	"github.com/good-yellow-bee/curlhub/internal/models"
)

func credentials(name string) models.Credentials {
	return models.Credentials{Username: name, Password: "pw-" + name}
}

func projectInput(i int) models.ProjectInput {
	vis := models.VisibilityPublic
	if i%2 == 1 {
		vis = models.VisibilityPrivate
	}
	return models.ProjectInput{Name: fmt.Sprintf("project-%03d", i), Visibility: vis}
}
