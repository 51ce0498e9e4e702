package graphqlapi

// Operation documents. Names and shapes are fixed by the server contract.

const productFields = `
      id
      product_id
      name
      description
      price
      inventory_count
      category {
        id
        name
        description
      }
      images {
        id
        image_url
        alt_text
        is_thumbnail
      }
      created_at
      updated_at`

const userFields = `
      id
      email
      name
      is_admin
      created_at
      updated_at`

const queryGetProducts = `
  query GetProducts($page: Int, $limit: Int) {
    products(page: $page, limit: $limit) {` + productFields + `
    }
  }`

const queryGetProduct = `
  query GetProduct($id: Int!) {
    product(id: $id) {` + productFields + `
    }
  }`

const queryGetProductsByCategory = `
  query GetProductsByCategory($categoryId: Int!, $page: Int, $limit: Int) {
    productsByCategory(categoryId: $categoryId, page: $page, limit: $limit) {` + productFields + `
    }
  }`

const querySearchProducts = `
  query SearchProducts($searchTerm: String!, $page: Int, $limit: Int, $categoryId: Int) {
    searchProducts(searchTerm: $searchTerm, page: $page, limit: $limit, categoryId: $categoryId) {` + productFields + `
    }
  }`

const mutationCreateProduct = `
  mutation CreateProduct($data: ProductInput!) {
    createProduct(data: $data) {` + productFields + `
    }
  }`

const mutationUpdateProduct = `
  mutation UpdateProduct($id: Int!, $data: ProductInput!) {
    updateProduct(id: $id, data: $data) {` + productFields + `
    }
  }`

const mutationDeleteProduct = `
  mutation DeleteProduct($id: Int!) {
    deleteProduct(id: $id)
  }`

const queryMe = `
  query Me {
    me {` + userFields + `
    }
  }`

const mutationLogin = `
  mutation Login($data: LoginInput!) {
    login(data: $data) {
      user {` + userFields + `
      }
      accessToken
      refreshToken
    }
  }`

const mutationRegister = `
  mutation Register($data: RegisterInput!) {
    register(data: $data) {
      user {` + userFields + `
      }
      accessToken
      refreshToken
    }
  }`

const mutationUpdateProfile = `
  mutation UpdateProfile($data: UpdateProfileInput!) {
    updateProfile(data: $data) {` + userFields + `
    }
  }`

const mutationChangePassword = `
  mutation ChangePassword($data: ChangePasswordInput!) {
    changePassword(data: $data)
  }`

const mutationDeleteAccount = `
  mutation DeleteAccount {
    deleteAccount
  }`
