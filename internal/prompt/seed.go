package prompt

import (
	"github.com/ashureev/bloomify/internal/domain"
)

const levelGuide = "REMEMBER - recall facts and basic concepts; UNDERSTAND - explain ideas and concepts; " +
	"APPLY - use information in new situations; ANALYZE - draw connections among different ideas; " +
	"EVALUATE - justify a stand or decision; CREATE - produce new or original work."

var classifySeed = []domain.Turn{
	{Role: domain.RoleUser, Text: "you are a tool designed to help teachers with setting better exam papers for students " +
		"that promote understanding and comprehension of the subject matter as compared to simple rote learning. " +
		"to do this, you must make use of BLOOM'S TAXONOMY LEVELS to classify exam paper questions into different " +
		"categories based on the area of the student that they are testing. the categories are as follows: " + levelGuide +
		" your job is to accept one question of a paper and RETURN THE CORRESPONDING BLOOM LEVEL. return ONLY the bloom level. " +
		"to start with, send the message: \"Welcome to Bloomify! Send a question you would like me to classify\" " +
		"and then wait for the user to send a question."},
	{Role: domain.RoleModel, Text: "Welcome to Bloomify! Send a question you would like me to classify"},
	{Role: domain.RoleUser, Text: "Define frame buffer"},
	{Role: domain.RoleModel, Text: "REMEMBER"},
	{Role: domain.RoleUser, Text: "Differentiate between paging and segmentation"},
	{Role: domain.RoleModel, Text: "ANALYZE"},
	{Role: domain.RoleUser, Text: "You need to predict the price of a house based on several features given that describe the house. " +
		"the predicted price will be a floating point number. will you use linear regression or logistic regression? explain why."},
	{Role: domain.RoleModel, Text: "ANALYZE"},
	{Role: domain.RoleUser, Text: "create an architecture for a Convolutional Neural Network that can classify handwritten digits " +
		"from the MNIST Dataset. Explain how you will process images into a format that the model can interpret."},
	{Role: domain.RoleModel, Text: "CREATE"},
}

var suggestSeed = []domain.Turn{
	{Role: domain.RoleUser, Text: "you are a tool designed to help teachers with setting better exam papers for students " +
		"that promote understanding and comprehension of the subject matter as compared to simple rote learning. " +
		"to do this, you must make use of BLOOM'S TAXONOMY LEVELS. BLOOM'S TAXONOMY LEVELS are as follows: " + levelGuide +
		" your job is to accept a question from a user along with a desired level. you will then return THE CURRENT LEVEL " +
		"of the question along with the modified question that is of the desired level. the user MAY also provide " +
		"additional information (this is optional for the user) for this task using the tag #additional-information = \"\" " +
		"and pass a string containing instructions/information that you may need to transform the question. " +
		"start the chat by sending \"Welcome to Bloomify. Please provide a question and the desired level you want me " +
		"to transform it to\" and then wait for the user to respond."},
	{Role: domain.RoleModel, Text: "Welcome to Bloomify! Please provide a question and the desired level you want me to transform it to"},
	{Role: domain.RoleUser, Text: "#question=Define Paging. #desired-level=APPLY"},
	{Role: domain.RoleModel, Text: "Current Level: Remember \n Modified Question: How can paging be used to improve the performance of a virtual memory system?"},
}

// Seed returns a copy of the few-shot history an endpoint's sessions
// start from. Generate sessions start empty.
func Seed(endpoint domain.Endpoint) []domain.Turn {
	var src []domain.Turn
	switch endpoint {
	case domain.EndpointClassify:
		src = classifySeed
	case domain.EndpointSuggest:
		src = suggestSeed
	default:
		return nil
	}
	out := make([]domain.Turn, len(src))
	copy(out, src)
	return out
}
