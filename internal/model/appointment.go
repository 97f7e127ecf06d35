package model

// Appointment is the stored booking record. Attribute names match the
// DynamoDB item layout, which is also what the frontend consumes.
type Appointment struct {
	ID          string `json:"appointment_id" dynamodbav:"appointment_id"`
	UserEmail   string `json:"userEmail" dynamodbav:"userEmail"`
	CarMake     string `json:"carMake" dynamodbav:"carMake"`
	CarModel    string `json:"carModel" dynamodbav:"carModel"`
	CarYear     string `json:"carYear" dynamodbav:"carYear"`
	ServiceType string `json:"serviceType" dynamodbav:"serviceType"`
	Date        string `json:"date" dynamodbav:"date"`
	Time        string `json:"time" dynamodbav:"time"`
	Description string `json:"description" dynamodbav:"description"`
	ImageURL    string `json:"imageUrl" dynamodbav:"imageUrl"`
	Status      string `json:"status" dynamodbav:"status"`
	CreatedAt   string `json:"createdAt" dynamodbav:"createdAt"`
}

const StatusPending = "Pending"
